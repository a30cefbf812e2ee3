// Package memory implementa los repositorios en memoria. Se usa en tests y con STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// state datos del almacén. Los valores guardados no se mutan: cada escritura reemplaza la entrada,
// así una copia superficial de los mapas sirve como snapshot de transacción.
type state struct {
	products       map[string]*entity.Product
	productSKUs    map[string]string
	warehouses     map[string]*entity.Warehouse
	warehouseCodes map[string]string
	locations      map[string]*entity.Location
	locationCodes  map[string]string // warehouseID + "/" + code
	stock          map[entity.StockKey]*entity.StockLevel
	ledger         []*entity.LedgerEntry
	docs           map[string]*entity.Document
	docNumbers     map[entity.DocType]map[string]string
	docSeq         map[entity.DocType]int
}

func newState() *state {
	return &state{
		products:       map[string]*entity.Product{},
		productSKUs:    map[string]string{},
		warehouses:     map[string]*entity.Warehouse{},
		warehouseCodes: map[string]string{},
		locations:      map[string]*entity.Location{},
		locationCodes:  map[string]string{},
		stock:          map[entity.StockKey]*entity.StockLevel{},
		docs:           map[string]*entity.Document{},
		docNumbers:     map[entity.DocType]map[string]string{},
		docSeq:         map[entity.DocType]int{},
	}
}

func (s *state) clone() *state {
	cp := &state{
		products:       copyMap(s.products),
		productSKUs:    copyMap(s.productSKUs),
		warehouses:     copyMap(s.warehouses),
		warehouseCodes: copyMap(s.warehouseCodes),
		locations:      copyMap(s.locations),
		locationCodes:  copyMap(s.locationCodes),
		stock:          copyMap(s.stock),
		ledger:         s.ledger[:len(s.ledger):len(s.ledger)],
		docs:           copyMap(s.docs),
		docNumbers:     make(map[entity.DocType]map[string]string, len(s.docNumbers)),
		docSeq:         copyMap(s.docSeq),
	}
	for t, m := range s.docNumbers {
		cp.docNumbers[t] = copyMap(m)
	}
	return cp
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store almacén en memoria. Las transacciones se serializan con un único mutex y se publican
// completas al terminar sin error; si fallan se descarta la copia.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// do ejecuta fn sobre la tx si existe; fuera de una tx toma el mutex por operación.
func (s *Store) do(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) inTx(ctx context.Context, fn func(tx *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.st.clone()
	if err := fn(tx); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// Repositorios sin transacción.
func (s *Store) Products() repository.ProductRepository       { return &productRepo{store: s} }
func (s *Store) Warehouses() repository.WarehouseRepository   { return &warehouseRepo{store: s} }
func (s *Store) Locations() repository.LocationRepository     { return &locationRepo{store: s} }
func (s *Store) StockLevels() repository.StockLevelRepository { return &stockRepo{store: s} }
func (s *Store) Ledger() repository.LedgerRepository          { return &ledgerRepo{store: s} }
func (s *Store) Documents() repository.DocumentRepository     { return &documentRepo{store: s} }

// TxRunner implementa ledger.TxRunner y workflow.TxRunner sobre el almacén.
type TxRunner struct {
	store *Store
}

// NewTxRunner crea el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repos de stock y libro atados a la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockLevelRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return r.store.inTx(ctx, func(tx *state) error {
		return fn(&stockRepo{store: r.store, tx: tx}, &ledgerRepo{store: r.store, tx: tx})
	})
}

// RunDocument ejecuta fn con repos de documentos, stock y libro atados a la transacción.
func (r *TxRunner) RunDocument(ctx context.Context, fn func(
	docRepo repository.DocumentRepository,
	stockRepo repository.StockLevelRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return r.store.inTx(ctx, func(tx *state) error {
		return fn(
			&documentRepo{store: r.store, tx: tx},
			&stockRepo{store: r.store, tx: tx},
			&ledgerRepo{store: r.store, tx: tx},
		)
	})
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
