package repository

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// LocationRepository puerto de persistencia para ubicaciones dentro de bodegas.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.Location, error)
}
