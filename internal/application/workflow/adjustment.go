package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// adjustmentPolicy ajuste por conteo físico. Cada línea guarda la cantidad del sistema al
// momento de la última edición y la diferencia contra lo contado; al confirmar se aplica
// la diferencia (nada si es 0).
type adjustmentPolicy struct{ singleLocation }

func (adjustmentPolicy) Type() entity.DocType { return entity.DocTypeAdjustment }

func (adjustmentPolicy) ValidateLine(position int, in dto.DocumentLineRequest) []error {
	problems := validateCommonLine(position, in)
	if in.CountedQuantity == nil {
		problems = append(problems, fmt.Errorf("línea %d: counted_quantity es requerido", position))
	} else if *in.CountedQuantity < 0 {
		problems = append(problems, fmt.Errorf("línea %d: counted_quantity no puede ser negativo", position))
	}
	if in.LocationID == "" {
		problems = append(problems, fmt.Errorf("línea %d: location_id es requerido", position))
	}
	return problems
}

// ValidateLines rechaza dos conteos del mismo producto en la misma ubicación: cada par tiene un solo conteo.
func (adjustmentPolicy) ValidateLines(in []dto.DocumentLineRequest) []error {
	var problems []error
	seen := make(map[[2]string]int, len(in))
	for i, l := range in {
		key := [2]string{l.ProductID, l.LocationID}
		if first, ok := seen[key]; ok {
			problems = append(problems, fmt.Errorf("línea %d: producto %s en ubicación %s repetido (línea %d)", i+1, l.ProductID, l.LocationID, first))
			continue
		}
		seen[key] = i + 1
	}
	return problems
}

func (adjustmentPolicy) BuildLine(in dto.DocumentLineRequest) *entity.Line {
	line := &entity.Line{
		ProductID:  in.ProductID,
		Unit:       in.Unit,
		LocationID: in.LocationID,
	}
	if in.CountedQuantity != nil {
		line.CountedQuantity = *in.CountedQuantity
		line.Quantity = *in.CountedQuantity
	}
	return line
}

// Derive toma la cantidad actual del stock como cantidad previa, descartando cualquier foto anterior.
func (adjustmentPolicy) Derive(ctx context.Context, stockRepo repository.StockLevelRepository, doc *entity.Document) error {
	for _, line := range doc.Lines {
		level, err := stockRepo.Get(ctx, adjustmentKey(doc, line))
		if err != nil {
			return err
		}
		line.PreviousQuantity = level.Quantity
		line.Difference = line.CountedQuantity - level.Quantity
	}
	return nil
}

func (adjustmentPolicy) Movements(doc *entity.Document, line *entity.Line) []ledger.Movement {
	if line.Difference == 0 {
		return nil
	}
	return []ledger.Movement{movement(doc, line, doc.WarehouseID, line.LocationID, line.Difference)}
}

// Finalize reporta las líneas cuya cantidad final no coincide con lo contado: el stock cambió
// entre la última edición y la confirmación.
func (adjustmentPolicy) Finalize(ctx context.Context, stockRepo repository.StockLevelRepository, doc *entity.Document, _ time.Time) ([]Discrepancy, error) {
	var out []Discrepancy
	for _, line := range doc.Lines {
		level, err := stockRepo.Get(ctx, adjustmentKey(doc, line))
		if err != nil {
			return nil, err
		}
		if level.Quantity != line.CountedQuantity {
			out = append(out, Discrepancy{
				Position: line.Position,
				LineID:   line.ID,
				Expected: line.CountedQuantity,
				Actual:   level.Quantity,
			})
		}
	}
	return out, nil
}

func adjustmentKey(doc *entity.Document, line *entity.Line) entity.StockKey {
	return entity.StockKey{ProductID: line.ProductID, WarehouseID: doc.WarehouseID, LocationID: line.LocationID}
}
