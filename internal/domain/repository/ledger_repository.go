package repository

import (
	"context"
	"time"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// LedgerFilter filtros para el historial de movimientos.
type LedgerFilter struct {
	DocType     entity.DocType
	DocumentID  string
	ProductID   string
	WarehouseID string
	LocationID  string
	From        *time.Time
	To          *time.Time
}

// LedgerRepository puerto del libro de movimientos. Solo inserción: no hay Update ni Delete.
type LedgerRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error

	// List devuelve entradas más recientes primero y el total que cumple el filtro.
	List(ctx context.Context, filter LedgerFilter, limit, offset int) ([]*entity.LedgerEntry, int, error)

	// ListByDocument devuelve las entradas de un documento en orden de aplicación.
	ListByDocument(ctx context.Context, docType entity.DocType, documentID string) ([]*entity.LedgerEntry, error)

	// SumByKey pliega el libro: suma de QuantityChange por clave de stock.
	SumByKey(ctx context.Context) (map[entity.StockKey]int64, error)
}
