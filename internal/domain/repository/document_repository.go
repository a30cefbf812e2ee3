package repository

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// DocumentFilter filtros para listar documentos de un tipo.
type DocumentFilter struct {
	Type        entity.DocType
	Status      entity.DocStatus
	WarehouseID string // coincide con bodega, origen o destino
}

// DocumentRepository puerto de persistencia de documentos con sus líneas.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, docType entity.DocType, id string) (*entity.Document, error)
	// GetForUpdate bloquea la cabecera hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, docType entity.DocType, id string) (*entity.Document, error)
	GetByNumber(ctx context.Context, docType entity.DocType, number string) (*entity.Document, error)
	// Update guarda la cabecera; si replaceLines también reemplaza las líneas.
	// Falla con domain.ErrConflict si doc.Version no coincide con la almacenada; al éxito incrementa doc.Version.
	Update(ctx context.Context, doc *entity.Document, replaceLines bool) error
	List(ctx context.Context, filter DocumentFilter, limit, offset int) ([]*entity.Document, int, error)
	// NextNumber genera el siguiente número correlativo del tipo (ej. REC/00001).
	NextNumber(ctx context.Context, docType entity.DocType) (string, error)
}
