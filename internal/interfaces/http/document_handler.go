package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/workflow"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// DocumentHandler rutas de un tipo de documento (recepciones, despachos, traslados o ajustes).
// El mismo handler sirve a los cuatro tipos.
type DocumentHandler struct {
	wf      *workflow.Workflow
	docType entity.DocType
	errs    errorHandler
}

// NewDocumentHandler construye el handler para un tipo.
func NewDocumentHandler(wf *workflow.Workflow, docType entity.DocType, errs errorHandler) *DocumentHandler {
	return &DocumentHandler{wf: wf, docType: docType, errs: errs}
}

// Create godoc
// @Summary      Crear documento en DRAFT
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDocumentRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/{tipo} [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if err := parseBody(c, &in); err != nil {
		return h.errs.write(c, err)
	}
	out, err := h.wf.Create(c.UserContext(), GetUserID(c), h.docType, in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return respond(c, fiber.StatusCreated, out)
}

// List godoc
// @Summary      Listar documentos
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        status        query  string  false  "Estado"
// @Param        warehouse_id  query  string  false  "Bodega (cabecera, origen o destino)"
// @Param        page          query  int     false  "Página"  default(1)
// @Param        limit         query  int     false  "Límite"  default(20)
// @Success      200  {object}  dto.DocumentListResponse
// @Router       /api/{tipo} [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var q dto.DocumentListQuery
	if err := parseQuery(c, &q); err != nil {
		return h.errs.write(c, err)
	}
	out, err := h.wf.List(c.UserContext(), h.docType, q)
	if err != nil {
		return h.errs.write(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// Get godoc
// @Summary      Obtener documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{tipo}/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	out, err := h.wf.Get(c.UserContext(), h.docType, c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// Update godoc
// @Summary      Editar cabecera y/o líneas (no DONE ni CANCELED)
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del documento"
// @Param        body  body  dto.UpdateDocumentRequest  true  "Cambios"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/{tipo}/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDocumentRequest
	if err := parseBody(c, &in); err != nil {
		return h.errs.write(c, err)
	}
	out, err := h.wf.Update(c.UserContext(), GetUserID(c), h.docType, c.Params("id"), in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// Transition devuelve el handler de una acción intermedia (wait, ready, pick, pack).
func (h *DocumentHandler) Transition(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := h.wf.Transition(c.UserContext(), h.docType, c.Params("id"), action)
		if err != nil {
			return h.errs.write(c, err)
		}
		return respond(c, fiber.StatusOK, out)
	}
}

// Cancel godoc
// @Summary      Cancelar documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/{tipo}/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.wf.Cancel(c.UserContext(), h.docType, c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// Confirm godoc
// @Summary      Confirmar documento (aplica los movimientos de stock)
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.ConfirmResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK, ALREADY_CONFIRMED, INVALID_TRANSITION o CONFIRMATION_IN_PROGRESS"
// @Router       /api/{tipo}/{id}/confirm [post]
func (h *DocumentHandler) Confirm(c *fiber.Ctx) error {
	out, err := h.wf.Confirm(c.UserContext(), GetUserID(c), h.docType, c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}

// Movements godoc
// @Summary      Movimientos del libro generados por el documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{tipo}/{id}/movements [get]
func (h *DocumentHandler) Movements(c *fiber.Ctx) error {
	out, err := h.wf.Movements(c.UserContext(), h.docType, c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return respond(c, fiber.StatusOK, out)
}
