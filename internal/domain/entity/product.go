package entity

import "time"

// Product representa un producto o SKU del inventario.
// El stock se maneja por bodega/ubicación en StockLevel, nunca en el producto.
type Product struct {
	ID        string
	SKU       string // código único
	Name      string
	Unit      string // unidad de medida por defecto
	CreatedAt time.Time
	UpdatedAt time.Time
}
