package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// Movement cambio de cantidad con signo sobre una clave producto/bodega/ubicación,
// originado por una línea de documento.
type Movement struct {
	DocType        entity.DocType
	DocumentID     string
	LineID         string
	ProductID      string
	WarehouseID    string
	LocationID     string
	QuantityChange int64
	UserID         string
	Note           string
}

// Key clave de stock afectada.
func (m Movement) Key() entity.StockKey {
	return entity.StockKey{ProductID: m.ProductID, WarehouseID: m.WarehouseID, LocationID: m.LocationID}
}

// Validate revisa las restricciones de entrada del movimiento.
func (m Movement) Validate() error {
	var problems []error
	if !m.DocType.IsValid() {
		problems = append(problems, fmt.Errorf("doc_type %q desconocido", m.DocType))
	}
	if m.DocumentID == "" {
		problems = append(problems, errors.New("document_id es requerido"))
	}
	if m.ProductID == "" || m.WarehouseID == "" || m.LocationID == "" {
		problems = append(problems, errors.New("product_id, warehouse_id y location_id son requeridos"))
	}
	if m.QuantityChange == 0 {
		problems = append(problems, errors.New("quantity_change no puede ser 0"))
	}
	return domain.NewValidationError(problems...)
}

// Engine motor del libro de stock: aplica un delta atómico condicionado (resultado >= 0)
// sobre la caché y agrega exactamente una entrada inmutable al libro.
type Engine struct {
	txRunner TxRunner
	recorder Recorder
	now      func() time.Time
}

// NewEngine construye el motor. recorder puede ser nil.
func NewEngine(txRunner TxRunner, recorder Recorder) *Engine {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Engine{
		txRunner: txRunner,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj (tests).
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ApplyMovement aplica el movimiento en su propia transacción y devuelve la cantidad resultante.
// Si el stock quedaría negativo devuelve *domain.InsufficientStockError sin escribir nada.
func (e *Engine) ApplyMovement(ctx context.Context, m Movement) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	var balance int64
	err := e.txRunner.Run(ctx, func(
		stockRepo repository.StockLevelRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		entry, err := e.ApplyInTx(ctx, stockRepo, ledgerRepo, m)
		if err != nil {
			return err
		}
		balance = entry.BalanceAfter
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.recorder.MovementApplied(m.DocType, m.QuantityChange)
	return balance, nil
}

// ApplyInTx aplica el movimiento usando los repositorios del caller (misma transacción).
// Lo usan las confirmaciones de documentos: si retorna error el caller debe hacer rollback.
// No cuenta el movimiento como aplicado: tras el commit el caller llama a RecordApplied.
func (e *Engine) ApplyInTx(
	ctx context.Context,
	stockRepo repository.StockLevelRepository,
	ledgerRepo repository.LedgerRepository,
	m Movement,
) (*entity.LedgerEntry, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	// Incremento condicional en una sola sentencia: no hay revertir-después-de-verificar.
	balance, err := stockRepo.Increment(ctx, m.Key(), m.QuantityChange)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			e.recorder.MovementRejected(m.DocType)
		}
		return nil, err
	}
	entry := &entity.LedgerEntry{
		ID:             uuid.New().String(),
		DocType:        m.DocType,
		DocumentID:     m.DocumentID,
		LineID:         m.LineID,
		ProductID:      m.ProductID,
		WarehouseID:    m.WarehouseID,
		LocationID:     m.LocationID,
		QuantityChange: m.QuantityChange,
		BalanceAfter:   balance,
		UserID:         m.UserID,
		Note:           m.Note,
		CreatedAt:      e.now(),
	}
	if err := ledgerRepo.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordApplied reporta al recorder entradas ya confirmadas en la BD.
func (e *Engine) RecordApplied(entries []*entity.LedgerEntry) {
	for _, entry := range entries {
		e.recorder.MovementApplied(entry.DocType, entry.QuantityChange)
	}
}
