package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de movimientos sobre ledger_entries. Solo INSERT y SELECT.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `id, doc_type, document_id, line_id, product_id, warehouse_id, location_id,
	quantity_change, balance_after, user_id, note, created_at`

// Append inserta una entrada. seq (BIGSERIAL) desempata entradas con el mismo created_at.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		e.ID, string(e.DocType), e.DocumentID, e.LineID, e.ProductID, e.WarehouseID, e.LocationID,
		e.QuantityChange, e.BalanceAfter, e.UserID, e.Note, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// List más recientes primero, con total.
func (r *LedgerRepo) List(ctx context.Context, f repository.LedgerFilter, limit, offset int) ([]*entity.LedgerEntry, int, error) {
	w := ledgerWhere(f)
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM ledger_entries`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries` + w.clause() +
		` ORDER BY created_at DESC, seq DESC LIMIT ` + w.next(limit) + ` OFFSET ` + w.next(offset)
	list, err := r.scan(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByDocument entradas del documento en orden de aplicación.
func (r *LedgerRepo) ListByDocument(ctx context.Context, docType entity.DocType, documentID string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE doc_type = $1 AND document_id = $2 ORDER BY seq`
	list, err := r.scan(ctx, query, string(docType), documentID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.LedgerEntry{}
	}
	return list, nil
}

// SumByKey suma de quantity_change por clave de stock.
func (r *LedgerRepo) SumByKey(ctx context.Context) (map[entity.StockKey]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, warehouse_id, location_id, COALESCE(SUM(quantity_change), 0)
		FROM ledger_entries GROUP BY product_id, warehouse_id, location_id`)
	if err != nil {
		return nil, fmt.Errorf("sum ledger: %w", err)
	}
	defer rows.Close()
	out := make(map[entity.StockKey]int64)
	for rows.Next() {
		var k entity.StockKey
		var sum int64
		if err := rows.Scan(&k.ProductID, &k.WarehouseID, &k.LocationID, &sum); err != nil {
			return nil, fmt.Errorf("scan ledger sum: %w", err)
		}
		out[k] = sum
	}
	return out, rows.Err()
}

func (r *LedgerRepo) scan(ctx context.Context, query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var docType string
		if err := rows.Scan(&e.ID, &docType, &e.DocumentID, &e.LineID, &e.ProductID, &e.WarehouseID,
			&e.LocationID, &e.QuantityChange, &e.BalanceAfter, &e.UserID, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.DocType = entity.DocType(docType)
		list = append(list, &e)
	}
	return list, rows.Err()
}

func ledgerWhere(f repository.LedgerFilter) *whereBuilder {
	w := &whereBuilder{}
	w.addIf(f.DocType != "", "doc_type = ?", string(f.DocType))
	w.addIf(f.DocumentID != "", "document_id = ?", f.DocumentID)
	w.addIf(f.ProductID != "", "product_id = ?", f.ProductID)
	w.addIf(f.WarehouseID != "", "warehouse_id = ?", f.WarehouseID)
	w.addIf(f.LocationID != "", "location_id = ?", f.LocationID)
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= ?", *f.To)
	}
	return w
}
