package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

type productRepo struct {
	store *Store
	tx    *state
}

func (r *productRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.store.do(r.tx, func(st *state) error {
		if _, ok := st.productSKUs[p.SKU]; ok {
			return domain.ErrDuplicate
		}
		cp := *p
		st.products[p.ID] = &cp
		st.productSKUs[p.SKU] = p.ID
		return nil
	})
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.do(r.tx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		cp := *p
		out = &cp
		return nil
	})
	return out, err
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	var id string
	err := r.store.do(r.tx, func(st *state) error {
		var ok bool
		if id, ok = st.productSKUs[sku]; !ok {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.store.do(r.tx, func(st *state) error {
		all := make([]*entity.Product, 0, len(st.products))
		for _, p := range st.products {
			cp := *p
			all = append(all, &cp)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
		out = paginate(all, limit, offset)
		return nil
	})
	return out, err
}

type warehouseRepo struct {
	store *Store
	tx    *state
}

func (r *warehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	return r.store.do(r.tx, func(st *state) error {
		if _, ok := st.warehouseCodes[w.Code]; ok {
			return domain.ErrDuplicate
		}
		cp := *w
		st.warehouses[w.ID] = &cp
		st.warehouseCodes[w.Code] = w.ID
		return nil
	})
}

func (r *warehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.store.do(r.tx, func(st *state) error {
		w, ok := st.warehouses[id]
		if !ok {
			return domain.ErrNotFound
		}
		cp := *w
		out = &cp
		return nil
	})
	return out, err
}

func (r *warehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.store.do(r.tx, func(st *state) error {
		all := make([]*entity.Warehouse, 0, len(st.warehouses))
		for _, w := range st.warehouses {
			cp := *w
			all = append(all, &cp)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
		out = paginate(all, limit, offset)
		return nil
	})
	return out, err
}

type locationRepo struct {
	store *Store
	tx    *state
}

func (r *locationRepo) Create(ctx context.Context, l *entity.Location) error {
	return r.store.do(r.tx, func(st *state) error {
		if _, ok := st.warehouses[l.WarehouseID]; !ok {
			return domain.ErrNotFound
		}
		code := l.WarehouseID + "/" + l.Code
		if _, ok := st.locationCodes[code]; ok {
			return domain.ErrDuplicate
		}
		cp := *l
		st.locations[l.ID] = &cp
		st.locationCodes[code] = l.ID
		return nil
	})
}

func (r *locationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.store.do(r.tx, func(st *state) error {
		l, ok := st.locations[id]
		if !ok {
			return domain.ErrNotFound
		}
		cp := *l
		out = &cp
		return nil
	})
	return out, err
}

func (r *locationRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.Location, error) {
	var out []*entity.Location
	err := r.store.do(r.tx, func(st *state) error {
		var all []*entity.Location
		for _, l := range st.locations {
			if l.WarehouseID != warehouseID {
				continue
			}
			cp := *l
			all = append(all, &cp)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
		out = paginate(all, limit, offset)
		return nil
	})
	return out, err
}
