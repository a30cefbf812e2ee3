package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo caché de cantidades sobre la tabla stock_levels (usable con pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get devuelve el nivel actual o cantidad 0 si la clave no existe.
func (r *StockLevelRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockLevel, error) {
	query := `
		SELECT product_id, warehouse_id, location_id, quantity, updated_at
		FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2 AND location_id = $3`
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, key.ProductID, key.WarehouseID, key.LocationID).Scan(
		&s.ProductID, &s.WarehouseID, &s.LocationID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{ProductID: key.ProductID, WarehouseID: key.WarehouseID, LocationID: key.LocationID}, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return &s, nil
}

// Increment aplica delta en una sola sentencia. Con delta negativo la condición
// quantity + delta >= 0 va en el WHERE: si no se cumple no se toca la fila.
func (r *StockLevelRepo) Increment(ctx context.Context, key entity.StockKey, delta int64) (int64, error) {
	var balance int64
	if delta >= 0 {
		query := `
			INSERT INTO stock_levels (product_id, warehouse_id, location_id, quantity, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (product_id, warehouse_id, location_id)
			DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = now()
			RETURNING quantity`
		if err := r.q.QueryRow(ctx, query, key.ProductID, key.WarehouseID, key.LocationID, delta).Scan(&balance); err != nil {
			return 0, fmt.Errorf("increment stock level: %w", err)
		}
		return balance, nil
	}

	query := `
		UPDATE stock_levels SET quantity = quantity + $4, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2 AND location_id = $3 AND quantity + $4 >= 0
		RETURNING quantity`
	err := r.q.QueryRow(ctx, query, key.ProductID, key.WarehouseID, key.LocationID, delta).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) && !isCheckViolation(err) {
		return 0, fmt.Errorf("decrement stock level: %w", err)
	}
	current, getErr := r.Get(ctx, key)
	if getErr != nil {
		return 0, getErr
	}
	return 0, &domain.InsufficientStockError{
		ProductID:   key.ProductID,
		WarehouseID: key.WarehouseID,
		LocationID:  key.LocationID,
		Available:   current.Quantity,
		Requested:   -delta,
	}
}

// lockStockLevelsSQL choca con el ROW EXCLUSIVE de INSERT/UPDATE pero no con lecturas.
const lockStockLevelsSQL = `LOCK TABLE stock_levels IN SHARE ROW EXCLUSIVE MODE`

// LockWrites solo tiene efecto dentro de una transacción: fuera de ella el lock se libera al terminar la sentencia.
func (r *StockLevelRepo) LockWrites(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, lockStockLevelsSQL); err != nil {
		return fmt.Errorf("lock stock levels: %w", err)
	}
	return nil
}

// Set reescribe la cantidad de la clave (reconciliación).
func (r *StockLevelRepo) Set(ctx context.Context, key entity.StockKey, quantity int64) error {
	query := `
		INSERT INTO stock_levels (product_id, warehouse_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, warehouse_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, key.ProductID, key.WarehouseID, key.LocationID, quantity); err != nil {
		return fmt.Errorf("set stock level: %w", err)
	}
	return nil
}

// List niveles filtrados y paginados, con el total.
func (r *StockLevelRepo) List(ctx context.Context, f repository.StockLevelFilter, limit, offset int) ([]*entity.StockLevel, int, error) {
	w := stockLevelWhere(f)
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_levels`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock levels: %w", err)
	}
	query := `
		SELECT product_id, warehouse_id, location_id, quantity, updated_at
		FROM stock_levels` + w.clause() +
		` ORDER BY product_id, warehouse_id, location_id LIMIT ` + w.next(limit) + ` OFFSET ` + w.next(offset)
	list, err := r.scan(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListAll todos los niveles (reconciliación).
func (r *StockLevelRepo) ListAll(ctx context.Context) ([]*entity.StockLevel, error) {
	return r.scan(ctx, `
		SELECT product_id, warehouse_id, location_id, quantity, updated_at
		FROM stock_levels ORDER BY product_id, warehouse_id, location_id`)
}

func (r *StockLevelRepo) scan(ctx context.Context, query string, args ...any) ([]*entity.StockLevel, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		var s entity.StockLevel
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.LocationID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func stockLevelWhere(f repository.StockLevelFilter) *whereBuilder {
	w := &whereBuilder{}
	w.addIf(f.ProductID != "", "product_id = ?", f.ProductID)
	w.addIf(f.WarehouseID != "", "warehouse_id = ?", f.WarehouseID)
	w.addIf(f.LocationID != "", "location_id = ?", f.LocationID)
	return w
}
