package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "query"} {
			if tag := strings.SplitN(f.Tag.Get(key), ",", 2)[0]; tag != "" && tag != "-" {
				return tag
			}
		}
		return f.Name
	})
	return v
}

// parseBody decodifica el JSON y valida las etiquetas validate del DTO.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return domain.NewValidationError(errors.New("cuerpo JSON inválido"))
	}
	return validateStruct(dest)
}

// parseQuery decodifica el query string y lo valida.
func parseQuery(c *fiber.Ctx, dest any) error {
	if err := c.QueryParser(dest); err != nil {
		return domain.NewValidationError(errors.New("parámetros de consulta inválidos"))
	}
	return validateStruct(dest)
}

func validateStruct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewValidationError(err)
	}
	problems := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, errors.New(fieldName(fe)+": "+validationMessage(fe)))
	}
	return domain.NewValidationError(problems...)
}

// fieldName ruta del campo sin el nombre del struct raíz (ej. lines[0].unit).
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es requerido"
	case "min":
		return "debe ser al menos " + fe.Param()
	case "max":
		return "debe ser como máximo " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	}
	return "no es válido"
}

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dto.Response{Success: true, Data: data})
}

// errorHandler traduce errores de dominio a la respuesta HTTP. Los no reconocidos son 500 y se registran.
type errorHandler struct {
	log *logger.Logger
}

func (h errorHandler) write(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	if status >= fiber.StatusInternalServerError {
		h.log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error interno")
	}
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var (
		validationErr *domain.ValidationError
		stockErr      *domain.InsufficientStockError
		lineErr       *domain.LineError
	)
	resp := dto.ErrorResponse{Message: err.Error()}
	switch {
	case errors.As(err, &validationErr):
		resp.Code, resp.Message, resp.Details = "VALIDATION_ERROR", "datos inválidos", validationErr.Problems()
		return fiber.StatusBadRequest, resp
	case errors.Is(err, domain.ErrInvalidInput):
		resp.Code = "VALIDATION_ERROR"
		return fiber.StatusBadRequest, resp
	case errors.Is(err, domain.ErrUnauthorized):
		resp.Code = "UNAUTHORIZED"
		return fiber.StatusUnauthorized, resp
	case errors.Is(err, domain.ErrForbidden):
		resp.Code = "FORBIDDEN"
		return fiber.StatusForbidden, resp
	case errors.Is(err, domain.ErrNotFound):
		resp.Code = "NOT_FOUND"
		return fiber.StatusNotFound, resp
	case errors.Is(err, domain.ErrDuplicate):
		resp.Code = "DUPLICATE"
		return fiber.StatusConflict, resp
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		resp.Code = "ALREADY_CONFIRMED"
		return fiber.StatusConflict, resp
	case errors.Is(err, domain.ErrInvalidTransition):
		resp.Code = "INVALID_TRANSITION"
		return fiber.StatusConflict, resp
	case errors.As(err, &stockErr):
		resp.Code = "INSUFFICIENT_STOCK"
		details := fiber.Map{
			"product_id":   stockErr.ProductID,
			"warehouse_id": stockErr.WarehouseID,
			"location_id":  stockErr.LocationID,
			"available":    stockErr.Available,
			"requested":    stockErr.Requested,
			"shortfall":    stockErr.Shortfall(),
		}
		if errors.As(err, &lineErr) {
			details["position"] = lineErr.Position
			details["line_id"] = lineErr.LineID
		}
		resp.Details = details
		return fiber.StatusConflict, resp
	case errors.Is(err, domain.ErrConfirmationInProgress):
		resp.Code = "CONFIRMATION_IN_PROGRESS"
		return fiber.StatusConflict, resp
	case errors.Is(err, domain.ErrConflict):
		resp.Code = "VERSION_CONFLICT"
		return fiber.StatusConflict, resp
	}
	resp.Code, resp.Message = "INTERNAL", "error interno"
	return fiber.StatusInternalServerError, resp
}
