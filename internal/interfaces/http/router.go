package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/application/usecase"
	"github.com/jhoicas/bodega-api/internal/application/workflow"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Workflow    *workflow.Workflow
	ProductUC   *usecase.ProductUseCase
	WarehouseUC *usecase.WarehouseUseCase
	Query       *ledger.QueryUseCase
	Reconcile   *ledger.ReconcileUseCase
	JWTSecret   string
	Logger      *logger.Logger
}

// documentRoutes prefijo de ruta por tipo de documento.
var documentRoutes = map[entity.DocType]string{
	entity.DocTypeReceipt:    "/receipts",
	entity.DocTypeDelivery:   "/deliveries",
	entity.DocTypeTransfer:   "/transfers",
	entity.DocTypeAdjustment: "/adjustments",
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	errs := errorHandler{log: log}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(RoleAdmin, RoleBodeguero)

	// Catálogo
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, errs)
	products.Post("/", writers, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, errs)
	warehouses.Post("/", writers, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Post("/:id/locations", writers, warehouseHandler.CreateLocation)
	warehouses.Get("/:id/locations", warehouseHandler.ListLocations)
	protected.Get("/locations/:id", warehouseHandler.GetLocation)

	// Documentos: mismas rutas para los cuatro tipos
	for _, docType := range entity.DocTypes {
		h := NewDocumentHandler(deps.Workflow, docType, errs)
		g := protected.Group(documentRoutes[docType])
		g.Post("/", writers, h.Create)
		g.Get("/", h.List)
		g.Get("/:id", h.Get)
		g.Put("/:id", writers, h.Update)
		for _, action := range deps.Workflow.Actions(docType) {
			g.Post("/:id/"+action, writers, h.Transition(action))
		}
		g.Post("/:id/cancel", writers, h.Cancel)
		g.Post("/:id/confirm", writers, h.Confirm)
		g.Get("/:id/movements", h.Movements)
	}

	// Libro y stock
	ledgerHandler := NewLedgerHandler(deps.Query, deps.Reconcile, errs)
	protected.Get("/ledger", ledgerHandler.ListEntries)
	protected.Get("/stock", ledgerHandler.ListStock)
	protected.Post("/stock/reconcile", RequireRole(RoleAdmin), ledgerHandler.Reconcile)
}
