package entity

import "time"

// StockKey identifica una posición de stock: producto en una ubicación de una bodega.
type StockKey struct {
	ProductID   string
	WarehouseID string
	LocationID  string
}

// StockLevel cantidad actual de un producto en una ubicación (caché materializada).
// Derivada del libro de movimientos; nunca negativa.
type StockLevel struct {
	ProductID   string
	WarehouseID string
	LocationID  string
	Quantity    int64
	UpdatedAt   time.Time
}

// Key devuelve la clave compuesta del nivel de stock.
func (s *StockLevel) Key() StockKey {
	return StockKey{ProductID: s.ProductID, WarehouseID: s.WarehouseID, LocationID: s.LocationID}
}
