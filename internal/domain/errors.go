package domain

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInvalidTransition      = errors.New("transición de estado no permitida")
	ErrAlreadyConfirmed       = errors.New("el documento ya fue confirmado")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrConfirmationInProgress = errors.New("confirmación en curso para el documento")
)

// ValidationError agrupa todos los problemas encontrados al validar una entrada.
// errors.Is(err, ErrInvalidInput) es verdadero.
type ValidationError struct {
	Err error // combinado con multierr
}

// NewValidationError devuelve nil si no hay problemas.
func NewValidationError(problems ...error) error {
	combined := multierr.Combine(problems...)
	if combined == nil {
		return nil
	}
	return &ValidationError{Err: combined}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidInput.Error(), e.Err)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Problems devuelve cada problema como texto (para la respuesta HTTP).
func (e *ValidationError) Problems() []string {
	errs := multierr.Errors(e.Err)
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

// InsufficientStockError detalla la falta de stock en una clave producto/bodega/ubicación.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	LocationID  string
	Available   int64
	Requested   int64 // cantidad que se intentó retirar (positiva)
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: producto %s en bodega %s / ubicación %s: disponible %d, solicitado %d",
		e.ProductID, e.WarehouseID, e.LocationID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Shortfall cantidad faltante.
func (e *InsufficientStockError) Shortfall() int64 {
	return e.Requested - e.Available
}

// LineError identifica la línea de documento que hizo fallar una confirmación.
type LineError struct {
	Position int // 1-based
	LineID   string
	Err      error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("línea %d (%s): %v", e.Position, e.LineID, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
