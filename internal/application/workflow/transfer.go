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

// transferPolicy traslado entre bodegas: dos movimientos por línea, primero el descuento en origen.
type transferPolicy struct{}

func (transferPolicy) Type() entity.DocType { return entity.DocTypeTransfer }

func (transferPolicy) ValidateHeader(doc *entity.Document) []error {
	var problems []error
	if doc.FromWarehouseID == "" {
		problems = append(problems, errors.New("from_warehouse_id es requerido"))
	}
	if doc.ToWarehouseID == "" {
		problems = append(problems, errors.New("to_warehouse_id es requerido"))
	}
	if doc.FromWarehouseID != "" && doc.FromWarehouseID == doc.ToWarehouseID {
		problems = append(problems, errors.New("las bodegas de origen y destino deben ser distintas"))
	}
	return problems
}

func (transferPolicy) ValidateLine(position int, in dto.DocumentLineRequest) []error {
	problems := validateCommonLine(position, in)
	if in.Quantity <= 0 {
		problems = append(problems, fmt.Errorf("línea %d: quantity debe ser mayor que 0", position))
	}
	if in.FromLocationID == "" {
		problems = append(problems, fmt.Errorf("línea %d: from_location_id es requerido", position))
	}
	if in.ToLocationID == "" {
		problems = append(problems, fmt.Errorf("línea %d: to_location_id es requerido", position))
	}
	return problems
}

func (transferPolicy) BuildLine(in dto.DocumentLineRequest) *entity.Line {
	return &entity.Line{
		ProductID:      in.ProductID,
		Quantity:       in.Quantity,
		Unit:           in.Unit,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
	}
}

func (transferPolicy) Locations(doc *entity.Document, line *entity.Line) []LocationRef {
	return []LocationRef{
		{Field: "from_location_id", WarehouseID: doc.FromWarehouseID, LocationID: line.FromLocationID},
		{Field: "to_location_id", WarehouseID: doc.ToWarehouseID, LocationID: line.ToLocationID},
	}
}

func (transferPolicy) Derive(context.Context, repository.StockLevelRepository, *entity.Document) error {
	return nil
}

func (transferPolicy) Movements(doc *entity.Document, line *entity.Line) []ledger.Movement {
	return []ledger.Movement{
		movement(doc, line, doc.FromWarehouseID, line.FromLocationID, -line.Quantity),
		movement(doc, line, doc.ToWarehouseID, line.ToLocationID, line.Quantity),
	}
}

func (transferPolicy) Finalize(context.Context, repository.StockLevelRepository, *entity.Document, time.Time) ([]Discrepancy, error) {
	return nil, nil
}

func (transferPolicy) Actions() map[string]Transition { return standardActions }
