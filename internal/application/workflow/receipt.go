package workflow

import (
	"context"
	"time"

	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// receiptPolicy recepción de proveedor: +quantity en la ubicación de la línea.
type receiptPolicy struct{ singleLocation }

func (receiptPolicy) Type() entity.DocType { return entity.DocTypeReceipt }

func (p receiptPolicy) ValidateLine(position int, in dto.DocumentLineRequest) []error {
	return p.validateQuantityLine(position, in)
}

func (receiptPolicy) Movements(doc *entity.Document, line *entity.Line) []ledger.Movement {
	return []ledger.Movement{movement(doc, line, doc.WarehouseID, line.LocationID, line.Quantity)}
}

// Finalize marca la fecha de recepción.
func (receiptPolicy) Finalize(_ context.Context, _ repository.StockLevelRepository, doc *entity.Document, now time.Time) ([]Discrepancy, error) {
	received := now
	doc.ReceivedDate = &received
	return nil, nil
}
