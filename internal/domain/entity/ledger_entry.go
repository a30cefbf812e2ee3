package entity

import "time"

// LedgerEntry registro inmutable de un movimiento de stock aplicado.
// QuantityChange positivo = entrada, negativo = salida.
type LedgerEntry struct {
	ID             string
	DocType        DocType
	DocumentID     string
	LineID         string
	ProductID      string
	WarehouseID    string
	LocationID     string
	QuantityChange int64
	BalanceAfter   int64 // cantidad en caché justo después del movimiento
	UserID         string
	Note           string
	CreatedAt      time.Time
}

// Key devuelve la clave de stock afectada por el movimiento.
func (e *LedgerEntry) Key() StockKey {
	return StockKey{ProductID: e.ProductID, WarehouseID: e.WarehouseID, LocationID: e.LocationID}
}
