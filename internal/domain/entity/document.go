package entity

import "time"

// DocType tipo de documento que mueve stock.
type DocType string

const (
	DocTypeReceipt    DocType = "RECEIPT"    // recepción de proveedor
	DocTypeDelivery   DocType = "DELIVERY"   // despacho a cliente
	DocTypeTransfer   DocType = "TRANSFER"   // traslado entre bodegas
	DocTypeAdjustment DocType = "ADJUSTMENT" // ajuste por conteo físico
)

// DocTypes todos los tipos soportados, en orden estable.
var DocTypes = []DocType{DocTypeReceipt, DocTypeDelivery, DocTypeTransfer, DocTypeAdjustment}

// IsValid indica si el tipo es conocido.
func (t DocType) IsValid() bool {
	switch t {
	case DocTypeReceipt, DocTypeDelivery, DocTypeTransfer, DocTypeAdjustment:
		return true
	}
	return false
}

// NumberPrefix prefijo para numeración automática.
func (t DocType) NumberPrefix() string {
	switch t {
	case DocTypeReceipt:
		return "REC"
	case DocTypeDelivery:
		return "DEL"
	case DocTypeTransfer:
		return "TRF"
	case DocTypeAdjustment:
		return "ADJ"
	}
	return "DOC"
}

// DocStatus estado del ciclo de vida compartido por todos los documentos.
type DocStatus string

const (
	StatusDraft    DocStatus = "DRAFT"
	StatusWaiting  DocStatus = "WAITING"
	StatusReady    DocStatus = "READY"
	StatusDone     DocStatus = "DONE"
	StatusCanceled DocStatus = "CANCELED"
)

// IsValid indica si el estado es conocido.
func (s DocStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusWaiting, StatusReady, StatusDone, StatusCanceled:
		return true
	}
	return false
}

// IsTerminal DONE y CANCELED no admiten más transiciones ni ediciones.
func (s DocStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusCanceled
}

// CanConfirm la confirmación solo parte de DRAFT o READY.
func (s DocStatus) CanConfirm() bool {
	return s == StatusDraft || s == StatusReady
}

// Unidades de medida aceptadas en las líneas.
var ValidUnits = []string{"units", "kg", "g", "l", "ml", "m", "box", "pack"}

// IsValidUnit indica si la unidad pertenece al catálogo.
func IsValidUnit(u string) bool {
	for _, v := range ValidUnits {
		if v == u {
			return true
		}
	}
	return false
}

// Document cabecera de un documento de inventario (recepción, despacho, traslado o ajuste).
// Es dueño exclusivo de sus líneas.
type Document struct {
	ID              string
	Type            DocType
	Number          string // único por tipo
	Status          DocStatus
	WarehouseID     string // recepción, despacho, ajuste
	FromWarehouseID string // traslado: origen
	ToWarehouseID   string // traslado: destino
	Counterparty    string // proveedor o cliente
	Notes           string
	ScheduledDate   *time.Time
	ReceivedDate    *time.Time // solo recepciones, al confirmar
	DoneAt          *time.Time
	CreatedBy       string
	Version         int64 // se incrementa en cada mutación
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Lines           []*Line
}

// Line línea de un documento.
type Line struct {
	ID             string
	DocumentID     string
	Position       int // 1-based, orden de aplicación
	ProductID      string
	Quantity       int64
	Unit           string
	LocationID     string // recepción, despacho, ajuste
	FromLocationID string // traslado
	ToLocationID   string // traslado

	// Solo ajustes: PreviousQuantity se toma del StockLevel al crear/editar las líneas.
	CountedQuantity  int64
	PreviousQuantity int64
	Difference       int64 // CountedQuantity - PreviousQuantity
}

// Clone copia profunda del documento (incluye líneas).
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	cp := *d
	cp.ScheduledDate = cloneTime(d.ScheduledDate)
	cp.ReceivedDate = cloneTime(d.ReceivedDate)
	cp.DoneAt = cloneTime(d.DoneAt)
	cp.Lines = make([]*Line, len(d.Lines))
	for i, l := range d.Lines {
		lc := *l
		cp.Lines[i] = &lc
	}
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
