package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain"
)

// LedgerHandler historial de movimientos, niveles de stock y reconciliación.
type LedgerHandler struct {
	query     *ledger.QueryUseCase
	reconcile *ledger.ReconcileUseCase
	errs      errorHandler
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(query *ledger.QueryUseCase, reconcile *ledger.ReconcileUseCase, errs errorHandler) *LedgerHandler {
	return &LedgerHandler{query: query, reconcile: reconcile, errs: errs}
}

// ListEntries godoc
// @Summary      Historial de movimientos (más recientes primero)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        doc_type      query  string  false  "RECEIPT, DELIVERY, TRANSFER o ADJUSTMENT"
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        location_id   query  string  false  "Ubicación"
// @Param        from          query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to            query  string  false  "Hasta (RFC3339 o YYYY-MM-DD, día completo)"
// @Param        page          query  int     false  "Página"  default(1)
// @Param        limit         query  int     false  "Límite"  default(20)
// @Success      200  {object}  dto.LedgerListResponse
// @Router       /api/ledger [get]
func (h *LedgerHandler) ListEntries(c *fiber.Ctx) error {
	var q dto.LedgerQuery
	if err := parseQuery(c, &q); err != nil {
		return h.errs.write(c, err)
	}
	from, err := parseTimeParam(c.Query("from"), false)
	if err != nil {
		return h.errs.write(c, domain.NewValidationError(errors.New("from: "+err.Error())))
	}
	to, err := parseTimeParam(c.Query("to"), true)
	if err != nil {
		return h.errs.write(c, domain.NewValidationError(errors.New("to: "+err.Error())))
	}
	q.From, q.To = from, to
	out, err := h.query.ListEntries(c.UserContext(), q)
	if err != nil {
		return h.errs.write(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// ListStock godoc
// @Summary      Niveles de stock actuales
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        location_id   query  string  false  "Ubicación"
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stock [get]
func (h *LedgerHandler) ListStock(c *fiber.Ctx) error {
	var q dto.StockQuery
	if err := parseQuery(c, &q); err != nil {
		return h.errs.write(c, err)
	}
	out, err := h.query.ListStock(c.UserContext(), q)
	if err != nil {
		return h.errs.write(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// Reconcile godoc
// @Summary      Comparar la caché de stock con el libro (admin)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        repair  query  bool  false  "Reescribir la caché con el valor del libro"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock/reconcile [post]
func (h *LedgerHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.reconcile.Reconcile(c.UserContext(), c.QueryBool("repair", false))
	if err != nil {
		return h.errs.write(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// parseTimeParam acepta RFC3339 o fecha YYYY-MM-DD. Con endOfDay una fecha sola cubre el día completo.
func parseTimeParam(v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, errors.New("formato de fecha inválido")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
