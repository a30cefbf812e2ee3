package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/application/workflow"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/require"
)

const testUser = "u-bodeguero"

// fixture bodegas W1 (L1, L1b) y W2 (L2) con los productos P y Q, sobre el almacén en memoria.
type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *memory.Store
	locker   *memory.Locker
	recorder *fakeRecorder
	wf       *workflow.Workflow
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []string
}

func (r *fakeRecorder) ConfirmObserved(_ entity.DocType, result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *fakeRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.results) == 0 {
		return ""
	}
	return r.results[len(r.results)-1]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithEngineRecorder(t, nil)
}

// newFixtureWithEngineRecorder igual que newFixture, con métricas de movimientos en el motor.
func newFixtureWithEngineRecorder(t *testing.T, engineRecorder ledger.Recorder) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for _, w := range []*entity.Warehouse{
		{ID: "W1", Code: "BOD1", Name: "Principal", CreatedAt: now, UpdatedAt: now},
		{ID: "W2", Code: "BOD2", Name: "Sucursal", CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, store.Warehouses().Create(ctx, w))
	}
	for _, l := range []*entity.Location{
		{ID: "L1", WarehouseID: "W1", Code: "A-01", Name: "Estante A", CreatedAt: now},
		{ID: "L1b", WarehouseID: "W1", Code: "B-01", Name: "Estante B", CreatedAt: now},
		{ID: "L2", WarehouseID: "W2", Code: "A-01", Name: "Estante A", CreatedAt: now},
	} {
		require.NoError(t, store.Locations().Create(ctx, l))
	}
	for _, p := range []*entity.Product{
		{ID: "P", SKU: "SKU-P", Name: "Tornillo", Unit: "units", CreatedAt: now, UpdatedAt: now},
		{ID: "Q", SKU: "SKU-Q", Name: "Tuerca", Unit: "units", CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, store.Products().Create(ctx, p))
	}

	txRunner := memory.NewTxRunner(store)
	locker := memory.NewLocker()
	recorder := &fakeRecorder{}
	wf := workflow.New(workflow.Deps{
		TxRunner:  txRunner,
		Documents: store.Documents(),
		Ledger:    store.Ledger(),
		Catalog: workflow.Catalog{
			Products:   store.Products(),
			Warehouses: store.Warehouses(),
			Locations:  store.Locations(),
		},
		Engine:   ledger.NewEngine(txRunner, engineRecorder),
		Locker:   locker,
		Recorder: recorder,
	})
	return &fixture{t: t, ctx: ctx, store: store, locker: locker, recorder: recorder, wf: wf}
}

func line(product, location string, qty int64) dto.DocumentLineRequest {
	return dto.DocumentLineRequest{ProductID: product, Quantity: qty, Unit: "units", LocationID: location}
}

func counted(product, location string, qty int64) dto.DocumentLineRequest {
	return dto.DocumentLineRequest{ProductID: product, Unit: "units", LocationID: location, CountedQuantity: &qty}
}

func transferLine(product, from, to string, qty int64) dto.DocumentLineRequest {
	return dto.DocumentLineRequest{ProductID: product, Quantity: qty, Unit: "units", FromLocationID: from, ToLocationID: to}
}

func (f *fixture) create(docType entity.DocType, in dto.CreateDocumentRequest) *dto.DocumentResponse {
	f.t.Helper()
	doc, err := f.wf.Create(f.ctx, testUser, docType, in)
	require.NoError(f.t, err)
	return doc
}

// receive deja stock inicial mediante una recepción confirmada.
func (f *fixture) receive(warehouse, location, product string, qty int64) {
	f.t.Helper()
	doc := f.create(entity.DocTypeReceipt, dto.CreateDocumentRequest{
		WarehouseID: warehouse,
		Lines:       []dto.DocumentLineRequest{line(product, location, qty)},
	})
	_, err := f.wf.Confirm(f.ctx, testUser, entity.DocTypeReceipt, doc.ID)
	require.NoError(f.t, err)
}

func (f *fixture) qty(product, warehouse, location string) int64 {
	f.t.Helper()
	level, err := f.store.StockLevels().Get(f.ctx, entity.StockKey{ProductID: product, WarehouseID: warehouse, LocationID: location})
	require.NoError(f.t, err)
	return level.Quantity
}

func (f *fixture) ledgerCount() int {
	f.t.Helper()
	_, total, err := f.store.Ledger().List(f.ctx, repository.LedgerFilter{}, 0, 0)
	require.NoError(f.t, err)
	return total
}

// assertFold la caché coincide con la suma del libro en todas las claves.
func (f *fixture) assertFold() {
	f.t.Helper()
	sums, err := f.store.Ledger().SumByKey(f.ctx)
	require.NoError(f.t, err)
	levels, err := f.store.StockLevels().ListAll(f.ctx)
	require.NoError(f.t, err)
	for _, l := range levels {
		require.Equal(f.t, sums[l.Key()], l.Quantity, "caché vs libro en %+v", l.Key())
		require.GreaterOrEqual(f.t, l.Quantity, int64(0))
	}
}
