package workflow

import (
	"context"
	"time"

	"github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Una confirmación completa (todas sus líneas y el cambio de estado) corre en una sola llamada.
type TxRunner interface {
	RunDocument(ctx context.Context, fn func(
		docRepo repository.DocumentRepository,
		stockRepo repository.StockLevelRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}

// MovementApplier aplica un movimiento dentro de la transacción del caller (ledger.Engine).
// RecordApplied se llama solo después del commit.
type MovementApplier interface {
	ApplyInTx(
		ctx context.Context,
		stockRepo repository.StockLevelRepository,
		ledgerRepo repository.LedgerRepository,
		m ledger.Movement,
	) (*entity.LedgerEntry, error)
	RecordApplied(entries []*entity.LedgerEntry)
}

// Locker lease exclusivo por clave. Si la clave ya está tomada devuelve domain.ErrConfirmationInProgress.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(context.Context) error, err error)
}

// Recorder métricas de confirmación. Puede ser nil.
type Recorder interface {
	ConfirmObserved(docType entity.DocType, result string, elapsed time.Duration)
}

// Catalog registros de productos, bodegas y ubicaciones que el flujo solo lee.
type Catalog struct {
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Locations  repository.LocationRepository
}

// Resultados de confirmación reportados al Recorder.
const (
	ResultDone              = "done"
	ResultInsufficientStock = "insufficient_stock"
	ResultAlreadyConfirmed  = "already_confirmed"
	ResultInvalidTransition = "invalid_transition"
	ResultInProgress        = "in_progress"
	ResultError             = "error"
)

type nopRecorder struct{}

func (nopRecorder) ConfirmObserved(entity.DocType, string, time.Duration) {}

type nopLocker struct{}

func (nopLocker) Acquire(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
