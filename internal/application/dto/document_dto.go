package dto

import "time"

// DocumentLineRequest línea en la creación/edición de un documento.
// Recepción/despacho: location_id + quantity. Traslado: from/to_location_id + quantity.
// Ajuste: location_id + counted_quantity (puede ser 0).
type DocumentLineRequest struct {
	ProductID       string `json:"product_id" validate:"required"`
	Quantity        int64  `json:"quantity" validate:"min=0"`
	Unit            string `json:"unit" validate:"required,oneof=units kg g l ml m box pack"`
	LocationID      string `json:"location_id,omitempty"`
	FromLocationID  string `json:"from_location_id,omitempty"`
	ToLocationID    string `json:"to_location_id,omitempty"`
	CountedQuantity *int64 `json:"counted_quantity,omitempty" validate:"omitempty,min=0"`
}

// CreateDocumentRequest body para POST /api/{receipts|deliveries|transfers|adjustments}.
type CreateDocumentRequest struct {
	Number          string                `json:"number" validate:"omitempty,max=40"`
	WarehouseID     string                `json:"warehouse_id,omitempty"`
	FromWarehouseID string                `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string                `json:"to_warehouse_id,omitempty"`
	Counterparty    string                `json:"counterparty,omitempty" validate:"max=200"`
	Notes           string                `json:"notes,omitempty"`
	ScheduledDate   *time.Time            `json:"scheduled_date,omitempty"`
	Lines           []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateDocumentRequest body para PUT /api/{tipo}/:id. Campos nil no se modifican.
// Si Lines viene, reemplaza todas las líneas.
type UpdateDocumentRequest struct {
	Version       *int64                `json:"version,omitempty"`
	Counterparty  *string               `json:"counterparty,omitempty" validate:"omitempty,max=200"`
	Notes         *string               `json:"notes,omitempty"`
	ScheduledDate *time.Time            `json:"scheduled_date,omitempty"`
	Lines         []DocumentLineRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

// DocumentLineResponse salida de una línea.
type DocumentLineResponse struct {
	ID               string `json:"id"`
	Position         int    `json:"position"`
	ProductID        string `json:"product_id"`
	Quantity         int64  `json:"quantity"`
	Unit             string `json:"unit"`
	LocationID       string `json:"location_id,omitempty"`
	FromLocationID   string `json:"from_location_id,omitempty"`
	ToLocationID     string `json:"to_location_id,omitempty"`
	CountedQuantity  *int64 `json:"counted_quantity,omitempty"`
	PreviousQuantity *int64 `json:"previous_quantity,omitempty"`
	Difference       *int64 `json:"difference,omitempty"`
}

// DocumentResponse salida de un documento con sus líneas.
type DocumentResponse struct {
	ID              string                 `json:"id"`
	Type            string                 `json:"type"`
	Number          string                 `json:"number"`
	Status          string                 `json:"status"`
	WarehouseID     string                 `json:"warehouse_id,omitempty"`
	FromWarehouseID string                 `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string                 `json:"to_warehouse_id,omitempty"`
	Counterparty    string                 `json:"counterparty,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	ScheduledDate   *time.Time             `json:"scheduled_date,omitempty"`
	ReceivedDate    *time.Time             `json:"received_date,omitempty"`
	DoneAt          *time.Time             `json:"done_at,omitempty"`
	CreatedBy       string                 `json:"created_by"`
	Version         int64                  `json:"version"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Lines           []DocumentLineResponse `json:"lines"`
}

// DocumentListResponse lista paginada de documentos.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// DocumentListQuery filtros de GET /api/{tipo}.
type DocumentListQuery struct {
	PageRequest
	Status      string `query:"status" validate:"omitempty,oneof=DRAFT WAITING READY DONE CANCELED"`
	WarehouseID string `query:"warehouse_id"`
}

// ConfirmResponse resultado de una confirmación: documento en DONE y movimientos escritos.
type ConfirmResponse struct {
	Document  DocumentResponse      `json:"document"`
	Movements []LedgerEntryResponse `json:"movements"`
}
