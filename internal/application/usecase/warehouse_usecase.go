package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// WarehouseUseCase alta y consulta de bodegas y sus ubicaciones.
type WarehouseUseCase struct {
	repo         repository.WarehouseRepository
	locationRepo repository.LocationRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository, locationRepo repository.LocationRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, locationRepo: locationRepo}
}

// Create crea una nueva bodega. El código es único.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, domain.NewValidationError(errors.New("code y name son requeridos"))
	}
	now := time.Now().UTC()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, Limit: page.Limit, Offset: page.Offset()},
	}, nil
}

// CreateLocation registra una ubicación en la bodega. El código es único dentro de la bodega.
func (uc *WarehouseUseCase) CreateLocation(ctx context.Context, warehouseID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if _, err := uc.repo.GetByID(ctx, warehouseID); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, domain.NewValidationError(errors.New("code es requerido"))
	}
	location := &entity.Location{
		ID:          uuid.New().String(),
		WarehouseID: warehouseID,
		Code:        code,
		Name:        strings.TrimSpace(in.Name),
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.locationRepo.Create(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// GetLocation obtiene una ubicación por ID.
func (uc *WarehouseUseCase) GetLocation(ctx context.Context, id string) (*dto.LocationResponse, error) {
	location, err := uc.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// ListLocations ubicaciones de una bodega.
func (uc *WarehouseUseCase) ListLocations(ctx context.Context, warehouseID string, page dto.PageRequest) (*dto.LocationListResponse, error) {
	if _, err := uc.repo.GetByID(ctx, warehouseID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.locationRepo.ListByWarehouse(ctx, warehouseID, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, Limit: page.Limit, Offset: page.Offset()},
	}, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:          l.ID,
		WarehouseID: l.WarehouseID,
		Code:        l.Code,
		Name:        l.Name,
		CreatedAt:   l.CreatedAt,
	}
}
