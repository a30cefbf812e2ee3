package entity

import "time"

// Location ubicación física dentro de una bodega (estante, zona, muelle).
type Location struct {
	ID          string
	WarehouseID string
	Code        string // único dentro de la bodega
	Name        string
	CreatedAt   time.Time
}
