package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

type documentRepo struct {
	store *Store
	tx    *state
}

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) error {
	return r.store.do(r.tx, func(st *state) error {
		numbers := st.docNumbers[doc.Type]
		if numbers == nil {
			numbers = map[string]string{}
			st.docNumbers[doc.Type] = numbers
		}
		if _, ok := numbers[doc.Number]; ok {
			return fmt.Errorf("%w: %s %s", domain.ErrDuplicate, doc.Type, doc.Number)
		}
		numbers[doc.Number] = doc.ID
		st.docs[doc.ID] = doc.Clone()
		return nil
	})
}

func (r *documentRepo) GetByID(ctx context.Context, docType entity.DocType, id string) (*entity.Document, error) {
	var out *entity.Document
	err := r.store.do(r.tx, func(st *state) error {
		d, ok := st.docs[id]
		if !ok || d.Type != docType {
			return domain.ErrNotFound
		}
		out = d.Clone()
		return nil
	})
	return out, err
}

// GetForUpdate dentro de una tx el mutex del almacén ya serializa el acceso.
func (r *documentRepo) GetForUpdate(ctx context.Context, docType entity.DocType, id string) (*entity.Document, error) {
	return r.GetByID(ctx, docType, id)
}

func (r *documentRepo) GetByNumber(ctx context.Context, docType entity.DocType, number string) (*entity.Document, error) {
	var out *entity.Document
	err := r.store.do(r.tx, func(st *state) error {
		id, ok := st.docNumbers[docType][number]
		if !ok {
			return domain.ErrNotFound
		}
		out = st.docs[id].Clone()
		return nil
	})
	return out, err
}

func (r *documentRepo) Update(ctx context.Context, doc *entity.Document, replaceLines bool) error {
	return r.store.do(r.tx, func(st *state) error {
		current, ok := st.docs[doc.ID]
		if !ok || current.Type != doc.Type {
			return domain.ErrNotFound
		}
		if current.Version != doc.Version {
			return fmt.Errorf("%w: versión %d, actual %d", domain.ErrConflict, doc.Version, current.Version)
		}
		next := doc.Clone()
		if !replaceLines {
			next.Lines = current.Clone().Lines
		}
		next.Version++
		st.docs[doc.ID] = next
		doc.Version = next.Version
		return nil
	})
}

func (r *documentRepo) List(ctx context.Context, f repository.DocumentFilter, limit, offset int) ([]*entity.Document, int, error) {
	var (
		out   []*entity.Document
		total int
	)
	err := r.store.do(r.tx, func(st *state) error {
		var all []*entity.Document
		for _, d := range st.docs {
			if d.Type != f.Type || (f.Status != "" && d.Status != f.Status) {
				continue
			}
			if f.WarehouseID != "" && d.WarehouseID != f.WarehouseID &&
				d.FromWarehouseID != f.WarehouseID && d.ToWarehouseID != f.WarehouseID {
				continue
			}
			all = append(all, d.Clone())
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.After(all[j].CreatedAt)
			}
			return all[i].Number > all[j].Number
		})
		total = len(all)
		out = paginate(all, limit, offset)
		return nil
	})
	return out, total, err
}

func (r *documentRepo) NextNumber(ctx context.Context, docType entity.DocType) (string, error) {
	var number string
	err := r.store.do(r.tx, func(st *state) error {
		for {
			st.docSeq[docType]++
			number = fmt.Sprintf("%s/%05d", docType.NumberPrefix(), st.docSeq[docType])
			if _, taken := st.docNumbers[docType][number]; !taken {
				return nil
			}
		}
	})
	return number, err
}
