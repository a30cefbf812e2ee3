package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

type stockRepo struct {
	store *Store
	tx    *state
}

func (r *stockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	err := r.store.do(r.tx, func(st *state) error {
		if s, ok := st.stock[key]; ok {
			cp := *s
			out = &cp
			return nil
		}
		out = &entity.StockLevel{ProductID: key.ProductID, WarehouseID: key.WarehouseID, LocationID: key.LocationID}
		return nil
	})
	return out, err
}

func (r *stockRepo) Increment(ctx context.Context, key entity.StockKey, delta int64) (int64, error) {
	var balance int64
	err := r.store.do(r.tx, func(st *state) error {
		var current int64
		if s, ok := st.stock[key]; ok {
			current = s.Quantity
		}
		if current+delta < 0 {
			return &domain.InsufficientStockError{
				ProductID:   key.ProductID,
				WarehouseID: key.WarehouseID,
				LocationID:  key.LocationID,
				Available:   current,
				Requested:   -delta,
			}
		}
		balance = current + delta
		st.stock[key] = &entity.StockLevel{
			ProductID:   key.ProductID,
			WarehouseID: key.WarehouseID,
			LocationID:  key.LocationID,
			Quantity:    balance,
			UpdatedAt:   time.Now().UTC(),
		}
		return nil
	})
	return balance, err
}

// LockWrites no hace nada: las transacciones del store ya se ejecutan de a una.
func (r *stockRepo) LockWrites(ctx context.Context) error {
	return ctx.Err()
}

func (r *stockRepo) Set(ctx context.Context, key entity.StockKey, quantity int64) error {
	return r.store.do(r.tx, func(st *state) error {
		st.stock[key] = &entity.StockLevel{
			ProductID:   key.ProductID,
			WarehouseID: key.WarehouseID,
			LocationID:  key.LocationID,
			Quantity:    quantity,
			UpdatedAt:   time.Now().UTC(),
		}
		return nil
	})
}

func (r *stockRepo) List(ctx context.Context, f repository.StockLevelFilter, limit, offset int) ([]*entity.StockLevel, int, error) {
	var (
		out   []*entity.StockLevel
		total int
	)
	err := r.store.do(r.tx, func(st *state) error {
		var all []*entity.StockLevel
		for _, s := range st.stock {
			if (f.ProductID != "" && s.ProductID != f.ProductID) ||
				(f.WarehouseID != "" && s.WarehouseID != f.WarehouseID) ||
				(f.LocationID != "" && s.LocationID != f.LocationID) {
				continue
			}
			cp := *s
			all = append(all, &cp)
		}
		sortLevels(all)
		total = len(all)
		out = paginate(all, limit, offset)
		return nil
	})
	return out, total, err
}

func (r *stockRepo) ListAll(ctx context.Context) ([]*entity.StockLevel, error) {
	list, _, err := r.List(ctx, repository.StockLevelFilter{}, 0, 0)
	return list, err
}

func sortLevels(list []*entity.StockLevel) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.WarehouseID != b.WarehouseID {
			return a.WarehouseID < b.WarehouseID
		}
		return a.LocationID < b.LocationID
	})
}
