package metrics

import (
	"testing"
	"time"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerMetrics_MovimientosPorDireccion(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.MovementApplied(entity.DocTypeReceipt, 10)
	m.MovementApplied(entity.DocTypeTransfer, -5)
	m.MovementApplied(entity.DocTypeTransfer, 5)
	m.MovementRejected(entity.DocTypeDelivery)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.movements.WithLabelValues("RECEIPT", "in")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.units.WithLabelValues("RECEIPT", "in")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.units.WithLabelValues("TRANSFER", "out")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.units.WithLabelValues("TRANSFER", "in")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("DELIVERY")))
}

func TestLedgerMetrics_Confirmaciones(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.ConfirmObserved(entity.DocTypeDelivery, "done", 20*time.Millisecond)
	m.ConfirmObserved(entity.DocTypeDelivery, "insufficient_stock", 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.confirms.WithLabelValues("DELIVERY", "done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.confirms.WithLabelValues("DELIVERY", "insufficient_stock")))

	count, err := testutil.GatherAndCount(reg, "bodega_document_confirmation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLedgerMetrics_NilEsInerte(t *testing.T) {
	var m *LedgerMetrics
	assert.NotPanics(t, func() {
		m.MovementApplied(entity.DocTypeReceipt, 1)
		m.MovementRejected(entity.DocTypeReceipt)
		m.ConfirmObserved(entity.DocTypeReceipt, "done", time.Millisecond)
	})

	unregistered := NewLedgerMetrics(nil)
	assert.NotPanics(t, func() { unregistered.MovementApplied(entity.DocTypeReceipt, 1) })
}

func TestHTTPMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("POST", "/api/receipts/:id/confirm", 200, 10*time.Millisecond)
	m.Observe("POST", "/api/receipts/:id/confirm", 409, 10*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/api/receipts/:id/confirm", "409")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unknown", "404")))
}
