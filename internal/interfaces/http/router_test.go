package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/application/usecase"
	"github.com/jhoicas/bodega-api/internal/application/workflow"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	"github.com/jhoicas/bodega-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/bodega-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/bodega-api/pkg/jwt"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

const routerSecret = "router-test-secret"

type apiClient struct {
	t   *testing.T
	app *fiber.App
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	store := memory.NewStore()
	txRunner := memory.NewTxRunner(store)
	wf := workflow.New(workflow.Deps{
		TxRunner:  txRunner,
		Documents: store.Documents(),
		Ledger:    store.Ledger(),
		Catalog: workflow.Catalog{
			Products:   store.Products(),
			Warehouses: store.Warehouses(),
			Locations:  store.Locations(),
		},
		Engine: ledger.NewEngine(txRunner, nil),
		Locker: memory.NewLocker(),
	})

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(apphttp.RequestLogger(logger.Nop(), metrics.NewHTTPMetrics(nil)))
	apphttp.Router(app, apphttp.RouterDeps{
		Workflow:    wf,
		ProductUC:   usecase.NewProductUseCase(store.Products()),
		WarehouseUC: usecase.NewWarehouseUseCase(store.Warehouses(), store.Locations()),
		Query:       ledger.NewQueryUseCase(store.Ledger(), store.StockLevels()),
		Reconcile:   ledger.NewReconcileUseCase(txRunner, nil),
		JWTSecret:   routerSecret,
	})
	return &apiClient{t: t, app: app}
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(routerSecret, "u-"+role, role, "", testExpMin)
	require.NoError(t, err)
	return tok
}

func (a *apiClient) do(method, path, role string, body any) (int, envelope) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+token(a.t, role))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	// las rutas inexistentes responden texto plano
	if resp.Header.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSON {
		require.NoError(a.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

// id crea un recurso y devuelve su id.
func (a *apiClient) id(path string, body any) string {
	a.t.Helper()
	status, env := a.do(fiber.MethodPost, path, "admin", body)
	require.Equal(a.t, fiber.StatusCreated, status, env.Message)
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(a.t, out.ID)
	return out.ID
}

type catalog struct {
	product, warehouse, location string
}

func (a *apiClient) seed() catalog {
	a.t.Helper()
	var c catalog
	c.product = a.id("/api/products", fiber.Map{"sku": "SKU-1", "name": "Tornillo", "unit": "units"})
	c.warehouse = a.id("/api/warehouses", fiber.Map{"code": "BOD1", "name": "Principal"})
	c.location = a.id("/api/warehouses/"+c.warehouse+"/locations", fiber.Map{"code": "A-01", "name": "Estante A"})
	return c
}

func docBody(c catalog, qty int) fiber.Map {
	return fiber.Map{
		"warehouse_id": c.warehouse,
		"lines": []fiber.Map{
			{"product_id": c.product, "quantity": qty, "unit": "units", "location_id": c.location},
		},
	}
}

func TestRouter_SinToken(t *testing.T) {
	api := newAPI(t)
	status, env := api.do(fiber.MethodGet, "/api/products", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", env.Code)
	assert.False(t, env.Success)
}

func TestRouter_RecepcionYDespacho(t *testing.T) {
	api := newAPI(t)
	c := api.seed()

	receiptID := api.id("/api/receipts", docBody(c, 10))
	status, env := api.do(fiber.MethodPost, "/api/receipts/"+receiptID+"/confirm", "bodeguero", nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.True(t, env.Success)

	var confirmed struct {
		Document struct {
			Status string `json:"status"`
		} `json:"document"`
		Movements []struct {
			QuantityChange int64 `json:"quantity_change"`
			BalanceAfter   int64 `json:"balance_after"`
		} `json:"movements"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &confirmed))
	assert.Equal(t, "DONE", confirmed.Document.Status)
	require.Len(t, confirmed.Movements, 1)
	assert.Equal(t, int64(10), confirmed.Movements[0].QuantityChange)
	assert.Equal(t, int64(10), confirmed.Movements[0].BalanceAfter)

	// segunda confirmación
	status, env = api.do(fiber.MethodPost, "/api/receipts/"+receiptID+"/confirm", "bodeguero", nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "ALREADY_CONFIRMED", env.Code)

	// despacho mayor al disponible
	deliveryID := api.id("/api/deliveries", docBody(c, 15))
	status, env = api.do(fiber.MethodPost, "/api/deliveries/"+deliveryID+"/confirm", "bodeguero", nil)
	require.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)

	var details map[string]any
	require.NoError(t, json.Unmarshal(env.Details, &details))
	assert.Equal(t, float64(10), details["available"])
	assert.Equal(t, float64(15), details["requested"])
	assert.Equal(t, float64(5), details["shortfall"])
	assert.Equal(t, float64(1), details["position"])

	status, env = api.do(fiber.MethodGet, "/api/stock?product_id="+c.product, "consulta", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"quantity":10`)

	status, env = api.do(fiber.MethodGet, "/api/deliveries/"+deliveryID+"/movements", "consulta", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestRouter_Validacion(t *testing.T) {
	api := newAPI(t)
	c := api.seed()

	body := fiber.Map{
		"warehouse_id": c.warehouse,
		"lines": []fiber.Map{
			{"product_id": "", "quantity": 1, "unit": "caja"},
		},
	}
	status, env := api.do(fiber.MethodPost, "/api/receipts", "bodeguero", body)
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	var problems []string
	require.NoError(t, json.Unmarshal(env.Details, &problems))
	assert.Len(t, problems, 2)
	assert.Contains(t, problems[0], "lines[0].product_id")
}

func TestRouter_NoEncontrado(t *testing.T) {
	api := newAPI(t)

	status, env := api.do(fiber.MethodGet, "/api/receipts/no-existe", "consulta", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)

	status, _ = api.do(fiber.MethodGet, "/api/products/no-existe", "consulta", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestRouter_TransicionesPorTipo(t *testing.T) {
	api := newAPI(t)
	c := api.seed()

	deliveryID := api.id("/api/deliveries", docBody(c, 1))
	status, env := api.do(fiber.MethodPost, "/api/deliveries/"+deliveryID+"/pick", "bodeguero", nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)

	receiptID := api.id("/api/receipts", docBody(c, 1))
	status, _ = api.do(fiber.MethodPost, "/api/receipts/"+receiptID+"/pick", "bodeguero", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = api.do(fiber.MethodPost, "/api/receipts/"+receiptID+"/cancel", "bodeguero", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"status":"CANCELED"`)

	status, env = api.do(fiber.MethodPost, "/api/receipts/"+receiptID+"/confirm", "bodeguero", nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", env.Code)
}

func TestRouter_LedgerFechas(t *testing.T) {
	api := newAPI(t)
	c := api.seed()

	receiptID := api.id("/api/receipts", docBody(c, 3))
	status, _ := api.do(fiber.MethodPost, "/api/receipts/"+receiptID+"/confirm", "admin", nil)
	require.Equal(t, fiber.StatusOK, status)

	today := time.Now().UTC().Format(time.DateOnly)
	status, env := api.do(fiber.MethodGet, "/api/ledger?from="+today+"&to="+today, "consulta", nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var page struct {
		Items []struct {
			DocType string `json:"doc_type"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "RECEIPT", page.Items[0].DocType)

	status, env = api.do(fiber.MethodGet, "/api/ledger?from=ayer", "consulta", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	status, env = api.do(fiber.MethodGet, "/api/ledger?doc_type=OTRO", "consulta", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}
