package ledger

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// QueryUseCase lecturas del libro y de la caché para reportes. Nunca muta.
type QueryUseCase struct {
	ledgerRepo repository.LedgerRepository
	stockRepo  repository.StockLevelRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(ledgerRepo repository.LedgerRepository, stockRepo repository.StockLevelRepository) *QueryUseCase {
	return &QueryUseCase{ledgerRepo: ledgerRepo, stockRepo: stockRepo}
}

// ListEntries historial de movimientos, más recientes primero.
func (uc *QueryUseCase) ListEntries(ctx context.Context, q dto.LedgerQuery) (*dto.LedgerListResponse, error) {
	q.DefaultPage()
	filter := repository.LedgerFilter{
		DocType:     entity.DocType(q.DocType),
		ProductID:   q.ProductID,
		WarehouseID: q.WarehouseID,
		LocationID:  q.LocationID,
		From:        q.From,
		To:          q.To,
	}
	list, total, err := uc.ledgerRepo.List(ctx, filter, q.Limit, q.Offset())
	if err != nil {
		return nil, err
	}
	return &dto.LedgerListResponse{
		Items: ToLedgerEntryResponses(list),
		Page:  dto.PageResponse{Page: q.Page, Limit: q.Limit, Offset: q.Offset(), Total: total},
	}, nil
}

// ListStock niveles de stock actuales.
func (uc *QueryUseCase) ListStock(ctx context.Context, q dto.StockQuery) (*dto.StockListResponse, error) {
	q.DefaultPage()
	filter := repository.StockLevelFilter{
		ProductID:   q.ProductID,
		WarehouseID: q.WarehouseID,
		LocationID:  q.LocationID,
	}
	list, total, err := uc.stockRepo.List(ctx, filter, q.Limit, q.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockLevelResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.StockLevelResponse{
			ProductID:   s.ProductID,
			WarehouseID: s.WarehouseID,
			LocationID:  s.LocationID,
			Quantity:    s.Quantity,
			UpdatedAt:   s.UpdatedAt,
		})
	}
	return &dto.StockListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: q.Page, Limit: q.Limit, Offset: q.Offset(), Total: total},
	}, nil
}

// ToLedgerEntryResponses convierte entradas del libro a DTO.
func ToLedgerEntryResponses(list []*entity.LedgerEntry) []dto.LedgerEntryResponse {
	items := make([]dto.LedgerEntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, toLedgerEntryResponse(e))
	}
	return items
}

func toLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:             e.ID,
		DocType:        string(e.DocType),
		DocumentID:     e.DocumentID,
		LineID:         e.LineID,
		ProductID:      e.ProductID,
		WarehouseID:    e.WarehouseID,
		LocationID:     e.LocationID,
		QuantityChange: e.QuantityChange,
		BalanceAfter:   e.BalanceAfter,
		UserID:         e.UserID,
		Note:           e.Note,
		CreatedAt:      e.CreatedAt,
	}
}
