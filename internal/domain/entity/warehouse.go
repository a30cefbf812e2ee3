package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario (multi-bodega).
type Warehouse struct {
	ID        string
	Code      string // código corto único, ej. "WH1"
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
