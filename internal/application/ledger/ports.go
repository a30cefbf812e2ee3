package ledger

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que el incremento del stock y la entrada del libro se confirmen juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockLevelRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}

// Recorder recibe las métricas del motor. Puede ser nil.
type Recorder interface {
	MovementApplied(docType entity.DocType, quantityChange int64)
	MovementRejected(docType entity.DocType)
}

type nopRecorder struct{}

func (nopRecorder) MovementApplied(entity.DocType, int64) {}
func (nopRecorder) MovementRejected(entity.DocType)       {}
