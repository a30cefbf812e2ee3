package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// Transition cambio de estado sin efectos sobre el stock.
type Transition struct {
	From entity.DocStatus
	To   entity.DocStatus
}

// LocationRef ubicación referenciada por una línea, con la bodega a la que debe pertenecer.
type LocationRef struct {
	Field       string
	WarehouseID string
	LocationID  string
}

// Discrepancy cantidad esperada vs. real de una línea tras confirmar.
type Discrepancy struct {
	Position int
	LineID   string
	Expected int64
	Actual   int64
}

// Policy estrategia por tipo de documento: validación, campos derivados y movimientos por línea.
// El flujo (estados, transacción, lease) es común a todos los tipos.
type Policy interface {
	Type() entity.DocType
	ValidateHeader(doc *entity.Document) []error
	// ValidateLine revisa la línea tal como llegó; position es 1-based.
	ValidateLine(position int, in dto.DocumentLineRequest) []error
	// BuildLine copia la entrada validada a la entidad.
	BuildLine(in dto.DocumentLineRequest) *entity.Line
	Locations(doc *entity.Document, line *entity.Line) []LocationRef
	// Derive recalcula los campos derivados de las líneas leyendo el stock actual.
	Derive(ctx context.Context, stockRepo repository.StockLevelRepository, doc *entity.Document) error
	// Movements movimientos de la línea en orden de aplicación (vacío = no mueve stock).
	Movements(doc *entity.Document, line *entity.Line) []ledger.Movement
	// Finalize se llama dentro de la transacción, tras aplicar todos los movimientos.
	Finalize(ctx context.Context, stockRepo repository.StockLevelRepository, doc *entity.Document, now time.Time) ([]Discrepancy, error)
	// Actions transiciones intermedias disponibles, por nombre de acción.
	Actions() map[string]Transition
}

// linesValidator reglas que cruzan líneas del mismo documento.
type linesValidator interface {
	ValidateLines(in []dto.DocumentLineRequest) []error
}

// Policies devuelve las cuatro estrategias indexadas por tipo.
func Policies() map[entity.DocType]Policy {
	out := make(map[entity.DocType]Policy, len(entity.DocTypes))
	for _, p := range []Policy{receiptPolicy{}, deliveryPolicy{}, transferPolicy{}, adjustmentPolicy{}} {
		out[p.Type()] = p
	}
	return out
}

var standardActions = map[string]Transition{
	"wait":  {From: entity.StatusDraft, To: entity.StatusWaiting},
	"ready": {From: entity.StatusWaiting, To: entity.StatusReady},
}

// singleLocation comportamiento compartido por recepción, despacho y ajuste: una bodega en la
// cabecera y una ubicación por línea.
type singleLocation struct{}

func (singleLocation) ValidateHeader(doc *entity.Document) []error {
	if doc.WarehouseID == "" {
		return []error{errors.New("warehouse_id es requerido")}
	}
	return nil
}

func (singleLocation) validateQuantityLine(position int, in dto.DocumentLineRequest) []error {
	problems := validateCommonLine(position, in)
	if in.Quantity <= 0 {
		problems = append(problems, fmt.Errorf("línea %d: quantity debe ser mayor que 0", position))
	}
	if in.LocationID == "" {
		problems = append(problems, fmt.Errorf("línea %d: location_id es requerido", position))
	}
	return problems
}

func (singleLocation) BuildLine(in dto.DocumentLineRequest) *entity.Line {
	return &entity.Line{
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		Unit:       in.Unit,
		LocationID: in.LocationID,
	}
}

func (singleLocation) Locations(doc *entity.Document, line *entity.Line) []LocationRef {
	return []LocationRef{{Field: "location_id", WarehouseID: doc.WarehouseID, LocationID: line.LocationID}}
}

func (singleLocation) Derive(context.Context, repository.StockLevelRepository, *entity.Document) error {
	return nil
}

func (singleLocation) Finalize(context.Context, repository.StockLevelRepository, *entity.Document, time.Time) ([]Discrepancy, error) {
	return nil, nil
}

func (singleLocation) Actions() map[string]Transition { return standardActions }

func validateCommonLine(position int, in dto.DocumentLineRequest) []error {
	var problems []error
	if in.ProductID == "" {
		problems = append(problems, fmt.Errorf("línea %d: product_id es requerido", position))
	}
	if !entity.IsValidUnit(in.Unit) {
		problems = append(problems, fmt.Errorf("línea %d: unidad %q no válida", position, in.Unit))
	}
	return problems
}

func movement(doc *entity.Document, line *entity.Line, warehouseID, locationID string, change int64) ledger.Movement {
	return ledger.Movement{
		DocType:        doc.Type,
		DocumentID:     doc.ID,
		LineID:         line.ID,
		ProductID:      line.ProductID,
		WarehouseID:    warehouseID,
		LocationID:     locationID,
		QuantityChange: change,
		Note:           doc.Number,
	}
}
