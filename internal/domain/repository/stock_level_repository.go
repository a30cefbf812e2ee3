package repository

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// StockLevelFilter filtros opcionales para listar niveles de stock (vacío = sin filtro).
type StockLevelFilter struct {
	ProductID   string
	WarehouseID string
	LocationID  string
}

// StockLevelRepository puerto de la caché de cantidades actuales (DIP).
// Usable con pool o dentro de una transacción.
type StockLevelRepository interface {
	// Get devuelve el nivel actual; si no existe devuelve cantidad 0 (sin crear la fila).
	Get(ctx context.Context, key entity.StockKey) (*entity.StockLevel, error)

	// Increment aplica delta de forma atómica sobre la clave y devuelve la nueva cantidad.
	// Si el resultado fuera negativo no modifica nada y devuelve *domain.InsufficientStockError.
	// Crea la fila en 0 si no existe (solo con delta positivo).
	Increment(ctx context.Context, key entity.StockKey, delta int64) (int64, error)

	// LockWrites bloquea escrituras concurrentes sobre la caché hasta el fin de la transacción.
	// Las escrituras en curso terminan antes de que retorne (reconciliación).
	LockWrites(ctx context.Context) error

	// Set reescribe la cantidad (solo reconciliación desde el libro).
	Set(ctx context.Context, key entity.StockKey, quantity int64) error

	List(ctx context.Context, filter StockLevelFilter, limit, offset int) ([]*entity.StockLevel, int, error)
	ListAll(ctx context.Context) ([]*entity.StockLevel, error)
}
