// seed carga un catálogo inicial (bodegas, ubicaciones y productos) desde un CSV exportado en
// ISO-8859-1 y, opcionalmente, emite un JWT de desarrollo.
//
// Uso: go run ./cmd/seed -file catalogo.csv
//
//	go run ./cmd/seed -token -user <uuid> -role admin
//
// Formato del CSV (separador ';', sin encabezado):
//
//	W;<código bodega>;<nombre>;<dirección>
//	L;<código bodega>;<código ubicación>;<nombre>
//	P;<sku>;<nombre>;<unidad>
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/usecase"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/jhoicas/bodega-api/pkg/jwt"
	"github.com/jhoicas/bodega-api/pkg/logger"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// row fila del catálogo ya decodificada a UTF-8.
type row struct {
	line   int
	kind   string // W, L o P
	fields []string
}

func main() {
	file := flag.String("file", "", "CSV del catálogo (ISO-8859-1)")
	utf8 := flag.Bool("utf8", false, "el CSV ya está en UTF-8")
	token := flag.Bool("token", false, "imprimir un JWT de desarrollo y salir")
	userID := flag.String("user", "", "user_id del token (por defecto uno aleatorio)")
	role := flag.String("role", "admin", "rol del token: admin, bodeguero o consulta")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	if *token {
		uid := *userID
		if uid == "" {
			uid = uuid.New().String()
		}
		tok, err := jwt.Generate(cfg.JWT.Secret, uid, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(tok)
		return
	}

	if *file == "" {
		fmt.Fprintln(os.Stderr, "-file es requerido (o -token)")
		os.Exit(2)
	}
	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := parseCatalog(f, !*utf8)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: cfg.App.Name + "-seed"})
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	s := &seeder{
		products:   usecase.NewProductUseCase(postgres.NewProductRepository(pool)),
		warehouses: usecase.NewWarehouseUseCase(postgres.NewWarehouseRepository(pool), postgres.NewLocationRepository(pool)),
		log:        log,
		codes:      make(map[string]string),
	}
	created, skipped, err := s.load(ctx, rows)
	if err != nil {
		log.Error().Err(err).Msg("carga del catálogo interrumpida")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Int("creados", created).Int("omitidos", skipped).Msg("catálogo cargado")
}

// parseCatalog lee el CSV separado por ';'. Con latin1 decodifica desde ISO-8859-1.
func parseCatalog(r io.Reader, latin1 bool) ([]row, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []row
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 || strings.HasPrefix(strings.TrimSpace(rec[0]), "#") {
			continue
		}
		kind := strings.ToUpper(strings.TrimSpace(rec[0]))
		switch kind {
		case "W", "L", "P":
		default:
			return nil, fmt.Errorf("línea %d: tipo de fila %q desconocido", line, rec[0])
		}
		fields := make([]string, 3)
		for i := range fields {
			if i+1 < len(rec) {
				fields[i] = strings.TrimSpace(rec[i+1])
			}
		}
		out = append(out, row{line: line, kind: kind, fields: fields})
	}
}

type seeder struct {
	products   *usecase.ProductUseCase
	warehouses *usecase.WarehouseUseCase
	log        *logger.Logger
	codes      map[string]string // código de bodega -> id
}

// load crea las filas en orden. Los duplicados se omiten; cualquier otro error detiene la carga.
func (s *seeder) load(ctx context.Context, rows []row) (created, skipped int, err error) {
	for _, r := range rows {
		err := s.apply(ctx, r)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
			s.log.Warn().Int("linea", r.line).Str("tipo", r.kind).Msg("registro existente, se omite")
		default:
			return created, skipped, fmt.Errorf("línea %d: %w", r.line, err)
		}
	}
	return created, skipped, nil
}

func (s *seeder) apply(ctx context.Context, r row) error {
	switch r.kind {
	case "W":
		w, err := s.warehouses.Create(ctx, dto.CreateWarehouseRequest{Code: r.fields[0], Name: r.fields[1], Address: r.fields[2]})
		if err != nil {
			return err
		}
		s.codes[w.Code] = w.ID
	case "L":
		warehouseID, ok := s.codes[r.fields[0]]
		if !ok {
			return fmt.Errorf("%w: bodega %s no definida antes en el archivo", domain.ErrNotFound, r.fields[0])
		}
		if _, err := s.warehouses.CreateLocation(ctx, warehouseID, dto.CreateLocationRequest{Code: r.fields[1], Name: r.fields[2]}); err != nil {
			return err
		}
	case "P":
		if _, err := s.products.Create(ctx, dto.CreateProductRequest{SKU: r.fields[0], Name: r.fields[1], Unit: r.fields[2]}); err != nil {
			return err
		}
	}
	return nil
}
