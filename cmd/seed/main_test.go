package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/jhoicas/bodega-api/internal/application/usecase"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	"github.com/jhoicas/bodega-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestParseCatalog_DecodificaLatin1(t *testing.T) {
	src := latin1(t, "W;BOD1;Bodega Principal;Calle 10\n# comentario\nL;BOD1;A-01;Pasillo Añejo\nP;SKU-1;Café molido;kg\n")

	rows, err := parseCatalog(bytes.NewReader(src), true)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Pasillo Añejo", rows[1].fields[2])
	assert.Equal(t, "Café molido", rows[2].fields[1])
	assert.Equal(t, 4, rows[2].line)
}

func TestParseCatalog_TipoDesconocido(t *testing.T) {
	_, err := parseCatalog(bytes.NewReader([]byte("X;a;b;c\n")), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "línea 1")
}

func TestSeeder_Load_OmiteDuplicados(t *testing.T) {
	store := memory.NewStore()
	s := &seeder{
		products:   usecase.NewProductUseCase(store.Products()),
		warehouses: usecase.NewWarehouseUseCase(store.Warehouses(), store.Locations()),
		log:        logger.Nop(),
		codes:      make(map[string]string),
	}
	rows, err := parseCatalog(bytes.NewReader([]byte(
		"W;BOD1;Principal;\nL;BOD1;A-01;Estante\nP;SKU-1;Tornillo;units\nP;SKU-1;Tornillo;units\n")), false)
	require.NoError(t, err)

	created, skipped, err := s.load(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 3, created)
	assert.Equal(t, 1, skipped)
}

func TestSeeder_Load_UbicacionSinBodega(t *testing.T) {
	store := memory.NewStore()
	s := &seeder{
		products:   usecase.NewProductUseCase(store.Products()),
		warehouses: usecase.NewWarehouseUseCase(store.Warehouses(), store.Locations()),
		log:        logger.Nop(),
		codes:      make(map[string]string),
	}
	rows, err := parseCatalog(bytes.NewReader([]byte("L;NOEXISTE;A-01;Estante\n")), false)
	require.NoError(t, err)

	_, _, err = s.load(context.Background(), rows)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
