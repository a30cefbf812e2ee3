package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/application/usecase"
	"github.com/jhoicas/bodega-api/internal/application/workflow"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	"github.com/jhoicas/bodega-api/internal/infrastructure/metrics"
	"github.com/jhoicas/bodega-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/bodega-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/bodega-api/internal/interfaces/http"
	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/jhoicas/bodega-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const swaggerFile = "./docs/swagger.json"

// stores repositorios y runner de la persistencia elegida (postgres o memory).
type stores struct {
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	locations  repository.LocationRepository
	stock      repository.StockLevelRepository
	ledger     repository.LedgerRepository
	documents  repository.DocumentRepository
	txRunner   interface {
		ledger.TxRunner
		workflow.TxRunner
	}
	close func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store.Driver).Msg("abrir persistencia")
	}
	defer st.close()

	locker, closeLocker, err := openLocker(ctx, cfg, log)
	if err != nil {
		// Fatal sale sin correr los defer
		st.close()
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer closeLocker()

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	var registerer prometheus.Registerer
	if reg != nil {
		registerer = reg
	}
	ledgerMetrics := metrics.NewLedgerMetrics(registerer)
	httpMetrics := metrics.NewHTTPMetrics(registerer)

	engine := ledger.NewEngine(st.txRunner, ledgerMetrics)
	wf := workflow.New(workflow.Deps{
		TxRunner:  st.txRunner,
		Documents: st.documents,
		Ledger:    st.ledger,
		Catalog: workflow.Catalog{
			Products:   st.products,
			Warehouses: st.warehouses,
			Locations:  st.locations,
		},
		Engine:     engine,
		Locker:     locker,
		Recorder:   ledgerMetrics,
		Logger:     log.Component("workflow"),
		LockPrefix: "confirm",
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http"), httpMetrics))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Bodega API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})
	if reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Workflow:    wf,
		ProductUC:   usecase.NewProductUseCase(st.products),
		WarehouseUC: usecase.NewWarehouseUseCase(st.warehouses, st.locations),
		Query:       ledger.NewQueryUseCase(st.ledger, st.stock),
		Reconcile:   ledger.NewReconcileUseCase(st.txRunner, log.Component("ledger")),
		JWTSecret:   cfg.JWT.Secret,
		Logger:      log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("persistencia en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &stores{
			products:   store.Products(),
			warehouses: store.Warehouses(),
			locations:  store.Locations(),
			stock:      store.StockLevels(),
			ledger:     store.Ledger(),
			documents:  store.Documents(),
			txRunner:   memory.NewTxRunner(store),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, "up"); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return &stores{
		products:   postgres.NewProductRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		locations:  postgres.NewLocationRepository(pool),
		stock:      postgres.NewStockLevelRepository(pool),
		ledger:     postgres.NewLedgerRepository(pool),
		documents:  postgres.NewDocumentRepository(pool),
		txRunner:   postgres.NewTxRunner(pool),
		close:      pool.Close,
	}, nil
}

// openLocker lease de confirmación: Redis si está configurado, si no un lock en proceso.
func openLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (workflow.Locker, func(), error) {
	if !cfg.Redis.Enabled() {
		return memory.NewLocker(), func() {}, nil
	}
	rdb, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Dur("ttl", cfg.Confirm.LockTTL).Msg("lease de confirmación en Redis")
	return infraredis.NewLocker(rdb, cfg.App.Name, cfg.Confirm.LockTTL), func() { _ = rdb.Close() }, nil
}
