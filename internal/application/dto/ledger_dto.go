package dto

import "time"

// LedgerEntryResponse salida de una entrada del libro de movimientos.
type LedgerEntryResponse struct {
	ID             string    `json:"id"`
	DocType        string    `json:"doc_type"`
	DocumentID     string    `json:"document_id"`
	LineID         string    `json:"line_id"`
	ProductID      string    `json:"product_id"`
	WarehouseID    string    `json:"warehouse_id"`
	LocationID     string    `json:"location_id"`
	QuantityChange int64     `json:"quantity_change"`
	BalanceAfter   int64     `json:"balance_after"`
	UserID         string    `json:"user_id"`
	Note           string    `json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// LedgerListResponse historial paginado.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// LedgerQuery filtros del historial (query string de GET /api/ledger).
type LedgerQuery struct {
	PageRequest
	DocType     string     `query:"doc_type" validate:"omitempty,oneof=RECEIPT DELIVERY TRANSFER ADJUSTMENT"`
	ProductID   string     `query:"product_id"`
	WarehouseID string     `query:"warehouse_id"`
	LocationID  string     `query:"location_id"`
	From        *time.Time `query:"-"`
	To          *time.Time `query:"-"`
}

// StockLevelResponse cantidad actual de una clave producto/bodega/ubicación.
type StockLevelResponse struct {
	ProductID   string    `json:"product_id"`
	WarehouseID string    `json:"warehouse_id"`
	LocationID  string    `json:"location_id"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StockListResponse niveles de stock paginados.
type StockListResponse struct {
	Items []StockLevelResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// StockQuery filtros de GET /api/stock.
type StockQuery struct {
	PageRequest
	ProductID   string `query:"product_id"`
	WarehouseID string `query:"warehouse_id"`
	LocationID  string `query:"location_id"`
}

// DriftItem diferencia entre la caché y el pliegue del libro para una clave.
type DriftItem struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	LocationID  string `json:"location_id"`
	Cached      int64  `json:"cached"`
	Ledger      int64  `json:"ledger"`
}

// ReconcileResponse resultado de la reconciliación caché vs libro.
type ReconcileResponse struct {
	KeysChecked int         `json:"keys_checked"`
	Drift       []DriftItem `json:"drift"`
	Repaired    bool        `json:"repaired"`
}
