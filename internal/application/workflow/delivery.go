package workflow

import (
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// deliveryPolicy despacho a cliente: -quantity; falla si no hay stock suficiente.
type deliveryPolicy struct{ singleLocation }

var deliveryActions = map[string]Transition{
	"wait":  standardActions["wait"],
	"ready": standardActions["ready"],
	"pick":  {From: entity.StatusDraft, To: entity.StatusWaiting},
	"pack":  {From: entity.StatusWaiting, To: entity.StatusReady},
}

func (deliveryPolicy) Type() entity.DocType { return entity.DocTypeDelivery }

func (p deliveryPolicy) ValidateLine(position int, in dto.DocumentLineRequest) []error {
	return p.validateQuantityLine(position, in)
}

func (deliveryPolicy) Movements(doc *entity.Document, line *entity.Line) []ledger.Movement {
	return []ledger.Movement{movement(doc, line, doc.WarehouseID, line.LocationID, -line.Quantity)}
}

func (deliveryPolicy) Actions() map[string]Transition { return deliveryActions }
