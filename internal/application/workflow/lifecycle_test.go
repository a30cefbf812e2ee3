package workflow_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_NumeracionPorTipo(t *testing.T) {
	f := newFixture(t)
	r1 := f.create(entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}})
	r2 := f.create(entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}})
	d1 := f.create(entity.DocTypeDelivery, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}})
	a1 := f.create(entity.DocTypeAdjustment, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{counted("P", "L1", 1)}})

	assert.Equal(t, "REC/00001", r1.Number)
	assert.Equal(t, "REC/00002", r2.Number)
	assert.Equal(t, "DEL/00001", d1.Number)
	assert.Equal(t, "ADJ/00001", a1.Number)
	assert.Equal(t, testUser, r1.CreatedBy)
	assert.Equal(t, int64(1), r1.Version)
}

func TestCreate_NumeroDuplicado(t *testing.T) {
	f := newFixture(t)
	in := dto.CreateDocumentRequest{Number: "OC-100", WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}}
	doc := f.create(entity.DocTypeReceipt, in)
	assert.Equal(t, "OC-100", doc.Number)

	_, err := f.wf.Create(f.ctx, testUser, entity.DocTypeReceipt, in)
	require.ErrorIs(t, err, domain.ErrDuplicate)

	// el mismo número en otro tipo es válido
	_, err = f.wf.Create(f.ctx, testUser, entity.DocTypeDelivery, in)
	require.NoError(t, err)
}

func TestCreate_Validacion(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name    string
		docType entity.DocType
		in      dto.CreateDocumentRequest
	}{
		{"sin bodega", entity.DocTypeReceipt, dto.CreateDocumentRequest{Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}}},
		{"sin líneas", entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1"}},
		{"cantidad cero", entity.DocTypeDelivery, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 0)}}},
		{"cantidad negativa", entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", -2)}}},
		{"unidad inválida", entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{{ProductID: "P", Quantity: 1, Unit: "barril", LocationID: "L1"}}}},
		{"ajuste sin conteo", entity.DocTypeAdjustment, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 3)}}},
		{"ajuste conteo negativo", entity.DocTypeAdjustment, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{counted("P", "L1", -1)}}},
		{"traslado misma bodega", entity.DocTypeTransfer, dto.CreateDocumentRequest{FromWarehouseID: "W1", ToWarehouseID: "W1", Lines: []dto.DocumentLineRequest{transferLine("P", "L1", "L1b", 1)}}},
		{"traslado sin destino", entity.DocTypeTransfer, dto.CreateDocumentRequest{FromWarehouseID: "W1", ToWarehouseID: "W2", Lines: []dto.DocumentLineRequest{transferLine("P", "L1", "", 1)}}},
		{"tipo desconocido", entity.DocType("RETURN"), dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.wf.Create(f.ctx, testUser, tc.docType, tc.in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreate_ReportaTodosLosProblemas(t *testing.T) {
	f := newFixture(t)
	_, err := f.wf.Create(f.ctx, testUser, entity.DocTypeReceipt, dto.CreateDocumentRequest{
		Lines: []dto.DocumentLineRequest{
			{ProductID: "", Quantity: 0, Unit: "units", LocationID: "L1"},
			line("P", "", 1),
		},
	})
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Len(t, vErr.Problems(), 4, "bodega, producto, cantidad y ubicación")
}

func TestCreate_ReferenciasInexistentes(t *testing.T) {
	f := newFixture(t)

	_, err := f.wf.Create(f.ctx, testUser, entity.DocTypeReceipt, dto.CreateDocumentRequest{
		WarehouseID: "W9", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.wf.Create(f.ctx, testUser, entity.DocTypeReceipt, dto.CreateDocumentRequest{
		WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("X", "L1", 1)},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.wf.Create(f.ctx, testUser, entity.DocTypeReceipt, dto.CreateDocumentRequest{
		WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L404", 1)},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_UbicacionDeOtraBodega(t *testing.T) {
	f := newFixture(t)
	_, err := f.wf.Create(f.ctx, testUser, entity.DocTypeReceipt, dto.CreateDocumentRequest{
		WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L2", 1)},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.wf.Create(f.ctx, testUser, entity.DocTypeTransfer, dto.CreateDocumentRequest{
		FromWarehouseID: "W1", ToWarehouseID: "W2",
		Lines: []dto.DocumentLineRequest{transferLine("P", "L1", "L1b", 1)},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "el destino debe estar en la bodega destino")
}

func TestTransition_Recepcion(t *testing.T) {
	f := newFixture(t)
	doc := f.create(entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}})

	_, err := f.wf.Transition(f.ctx, entity.DocTypeReceipt, doc.ID, "ready")
	require.ErrorIs(t, err, domain.ErrInvalidTransition, "ready requiere WAITING")

	out, err := f.wf.Transition(f.ctx, entity.DocTypeReceipt, doc.ID, "wait")
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusWaiting), out.Status)
	assert.Equal(t, int64(2), out.Version)

	out, err = f.wf.Transition(f.ctx, entity.DocTypeReceipt, doc.ID, "ready")
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusReady), out.Status)

	_, err = f.wf.Transition(f.ctx, entity.DocTypeReceipt, doc.ID, "pick")
	require.ErrorIs(t, err, domain.ErrInvalidInput, "pick solo existe en despachos")
	assert.Equal(t, 0, f.ledgerCount(), "las transiciones no mueven stock")
}

func TestTransition_DespachoPickPack(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{"pack", "pick", "ready", "wait"}, f.wf.Actions(entity.DocTypeDelivery))
	assert.Equal(t, []string{"ready", "wait"}, f.wf.Actions(entity.DocTypeReceipt))

	doc := f.create(entity.DocTypeDelivery, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}})
	out, err := f.wf.Transition(f.ctx, entity.DocTypeDelivery, doc.ID, "pick")
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusWaiting), out.Status)

	out, err = f.wf.Transition(f.ctx, entity.DocTypeDelivery, doc.ID, "pack")
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusReady), out.Status)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	for _, steps := range [][]string{nil, {"wait"}, {"wait", "ready"}} {
		doc := f.create(entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}})
		for _, a := range steps {
			_, err := f.wf.Transition(f.ctx, entity.DocTypeReceipt, doc.ID, a)
			require.NoError(t, err)
		}
		out, err := f.wf.Cancel(f.ctx, entity.DocTypeReceipt, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, string(entity.StatusCanceled), out.Status)

		_, err = f.wf.Cancel(f.ctx, entity.DocTypeReceipt, doc.ID)
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
		_, err = f.wf.Transition(f.ctx, entity.DocTypeReceipt, doc.ID, "wait")
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
	}

	done := f.create(entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}})
	_, err := f.wf.Confirm(f.ctx, testUser, entity.DocTypeReceipt, done.ID)
	require.NoError(t, err)
	_, err = f.wf.Cancel(f.ctx, entity.DocTypeReceipt, done.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(1), f.qty("P", "W1", "L1"), "cancelar no revierte stock")
}

func TestUpdate_CabeceraYLineas(t *testing.T) {
	f := newFixture(t)
	doc := f.create(entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}})

	notes := "llega el lunes"
	out, err := f.wf.Update(f.ctx, testUser, entity.DocTypeReceipt, doc.ID, dto.UpdateDocumentRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, out.Notes)
	require.Len(t, out.Lines, 1, "sin lines se conservan las actuales")
	assert.Equal(t, doc.Lines[0].ID, out.Lines[0].ID)

	out, err = f.wf.Update(f.ctx, testUser, entity.DocTypeReceipt, doc.ID, dto.UpdateDocumentRequest{
		Lines: []dto.DocumentLineRequest{line("Q", "L1b", 6), line("P", "L1", 2)},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines, 2)
	assert.Equal(t, 1, out.Lines[0].Position)
	assert.Equal(t, "Q", out.Lines[0].ProductID)

	conf, err := f.wf.Confirm(f.ctx, testUser, entity.DocTypeReceipt, doc.ID)
	require.NoError(t, err)
	assert.Len(t, conf.Movements, 2)
	assert.Equal(t, int64(6), f.qty("Q", "W1", "L1b"))
	assert.Equal(t, int64(2), f.qty("P", "W1", "L1"))
}

func TestUpdate_AjusteRecalculaCantidadPrevia(t *testing.T) {
	f := newFixture(t)
	f.receive("W1", "L1", "P", 12)
	doc := f.create(entity.DocTypeAdjustment, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{counted("P", "L1", 9)}})
	assert.Equal(t, int64(-3), *doc.Lines[0].Difference)

	f.receive("W1", "L1", "P", 3) // 15

	// editar la cabecera no toca la foto
	notes := "recuento"
	out, err := f.wf.Update(f.ctx, testUser, entity.DocTypeAdjustment, doc.ID, dto.UpdateDocumentRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, int64(12), *out.Lines[0].PreviousQuantity)

	// reemplazar líneas vuelve a leer el stock
	out, err = f.wf.Update(f.ctx, testUser, entity.DocTypeAdjustment, doc.ID, dto.UpdateDocumentRequest{
		Lines: []dto.DocumentLineRequest{counted("P", "L1", 9)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), *out.Lines[0].PreviousQuantity)
	assert.Equal(t, int64(-6), *out.Lines[0].Difference)

	_, err = f.wf.Confirm(f.ctx, testUser, entity.DocTypeAdjustment, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), f.qty("P", "W1", "L1"))
}

func TestUpdate_ConflictoDeVersion(t *testing.T) {
	f := newFixture(t)
	doc := f.create(entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}})

	stale := doc.Version
	notes := "a"
	out, err := f.wf.Update(f.ctx, testUser, entity.DocTypeReceipt, doc.ID, dto.UpdateDocumentRequest{Version: &stale, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, stale+1, out.Version)

	_, err = f.wf.Update(f.ctx, testUser, entity.DocTypeReceipt, doc.ID, dto.UpdateDocumentRequest{Version: &stale, Notes: &notes})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdate_DocumentoTerminal(t *testing.T) {
	f := newFixture(t)
	doc := f.create(entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}})
	_, err := f.wf.Confirm(f.ctx, testUser, entity.DocTypeReceipt, doc.ID)
	require.NoError(t, err)

	notes := "tarde"
	_, err = f.wf.Update(f.ctx, testUser, entity.DocTypeReceipt, doc.ID, dto.UpdateDocumentRequest{Notes: &notes})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdate_LineasConUbicacionDeOtraBodega(t *testing.T) {
	f := newFixture(t)
	doc := f.create(entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}})
	_, err := f.wf.Update(f.ctx, testUser, entity.DocTypeReceipt, doc.ID, dto.UpdateDocumentRequest{
		Lines: []dto.DocumentLineRequest{line("P", "L2", 1)},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetYList(t *testing.T) {
	f := newFixture(t)
	r := f.create(entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W1", Lines: []dto.DocumentLineRequest{line("P", "L1", 1)}})
	f.create(entity.DocTypeReceipt, dto.CreateDocumentRequest{WarehouseID: "W2", Lines: []dto.DocumentLineRequest{line("P", "L2", 1)}})
	tr := f.create(entity.DocTypeTransfer, dto.CreateDocumentRequest{
		FromWarehouseID: "W2", ToWarehouseID: "W1",
		Lines: []dto.DocumentLineRequest{transferLine("P", "L2", "L1", 1)},
	})
	_, err := f.wf.Cancel(f.ctx, entity.DocTypeReceipt, r.ID)
	require.NoError(t, err)

	got, err := f.wf.Get(f.ctx, entity.DocTypeReceipt, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Number, got.Number)

	_, err = f.wf.Get(f.ctx, entity.DocTypeDelivery, r.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	all, err := f.wf.List(f.ctx, entity.DocTypeReceipt, dto.DocumentListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Page.Total)

	canceled, err := f.wf.List(f.ctx, entity.DocTypeReceipt, dto.DocumentListQuery{Status: string(entity.StatusCanceled)})
	require.NoError(t, err)
	require.Len(t, canceled.Items, 1)
	assert.Equal(t, r.ID, canceled.Items[0].ID)

	inW1, err := f.wf.List(f.ctx, entity.DocTypeTransfer, dto.DocumentListQuery{WarehouseID: "W1"})
	require.NoError(t, err)
	require.Len(t, inW1.Items, 1, "el filtro de bodega incluye origen y destino")
	assert.Equal(t, tr.ID, inW1.Items[0].ID)
}

func TestAjuste_ConteoRepetidoPorUbicacion(t *testing.T) {
	f := newFixture(t)
	f.receive("W1", "L1", "P", 10)

	_, err := f.wf.Create(f.ctx, testUser, entity.DocTypeAdjustment, dto.CreateDocumentRequest{
		WarehouseID: "W1",
		Lines:       []dto.DocumentLineRequest{counted("P", "L1", 4), counted("P", "L1", 3)},
	})
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Len(t, vErr.Problems(), 1)
	assert.Contains(t, vErr.Problems()[0], "línea 2")

	// mismo producto en otra ubicación sí es válido
	doc := f.create(entity.DocTypeAdjustment, dto.CreateDocumentRequest{
		WarehouseID: "W1",
		Lines:       []dto.DocumentLineRequest{counted("P", "L1", 4), counted("P", "L1b", 3)},
	})

	// la edición aplica la misma regla
	_, err = f.wf.Update(f.ctx, testUser, entity.DocTypeAdjustment, doc.ID, dto.UpdateDocumentRequest{
		Lines: []dto.DocumentLineRequest{counted("P", "L1b", 1), counted("P", "L1b", 2)},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	conf, err := f.wf.Confirm(f.ctx, testUser, entity.DocTypeAdjustment, doc.ID)
	require.NoError(t, err)
	assert.Len(t, conf.Movements, 2)
	assert.Equal(t, int64(4), f.qty("P", "W1", "L1"))
	assert.Equal(t, int64(3), f.qty("P", "W1", "L1b"))
	f.assertFold()
}
