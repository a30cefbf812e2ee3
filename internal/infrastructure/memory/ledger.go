package memory

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

type ledgerRepo struct {
	store *Store
	tx    *state
}

func (r *ledgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	return r.store.do(r.tx, func(st *state) error {
		cp := *e
		st.ledger = append(st.ledger, &cp)
		return nil
	})
}

// List recorre el libro al revés: el orden de inserción es el cronológico.
func (r *ledgerRepo) List(ctx context.Context, f repository.LedgerFilter, limit, offset int) ([]*entity.LedgerEntry, int, error) {
	var (
		out   []*entity.LedgerEntry
		total int
	)
	err := r.store.do(r.tx, func(st *state) error {
		var all []*entity.LedgerEntry
		for i := len(st.ledger) - 1; i >= 0; i-- {
			e := st.ledger[i]
			if !matchLedger(e, f) {
				continue
			}
			cp := *e
			all = append(all, &cp)
		}
		total = len(all)
		out = paginate(all, limit, offset)
		return nil
	})
	return out, total, err
}

func (r *ledgerRepo) ListByDocument(ctx context.Context, docType entity.DocType, documentID string) ([]*entity.LedgerEntry, error) {
	out := []*entity.LedgerEntry{}
	err := r.store.do(r.tx, func(st *state) error {
		for _, e := range st.ledger {
			if e.DocType == docType && e.DocumentID == documentID {
				cp := *e
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

func (r *ledgerRepo) SumByKey(ctx context.Context) (map[entity.StockKey]int64, error) {
	out := make(map[entity.StockKey]int64)
	err := r.store.do(r.tx, func(st *state) error {
		for _, e := range st.ledger {
			out[e.Key()] += e.QuantityChange
		}
		return nil
	})
	return out, err
}

func matchLedger(e *entity.LedgerEntry, f repository.LedgerFilter) bool {
	switch {
	case f.DocType != "" && e.DocType != f.DocType,
		f.DocumentID != "" && e.DocumentID != f.DocumentID,
		f.ProductID != "" && e.ProductID != f.ProductID,
		f.WarehouseID != "" && e.WarehouseID != f.WarehouseID,
		f.LocationID != "" && e.LocationID != f.LocationID,
		f.From != nil && e.CreatedAt.Before(*f.From),
		f.To != nil && e.CreatedAt.After(*f.To):
		return false
	}
	return true
}
