// Package metrics métricas Prometheus del libro de stock, las confirmaciones y la API HTTP.
package metrics

import (
	"time"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bodega"

// LedgerMetrics implementa ledger.Recorder y workflow.Recorder. Un valor nil no registra nada.
type LedgerMetrics struct {
	movements *prometheus.CounterVec
	units     *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	confirms  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewLedgerMetrics registra las métricas en reg. Con reg nil devuelve un recorder inerte.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	m := &LedgerMetrics{
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_movements_total",
			Help:      "Movimientos aplicados al libro de stock.",
		}, []string{"doc_type", "direction"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_units_total",
			Help:      "Unidades movidas (valor absoluto) por tipo de documento y dirección.",
		}, []string{"doc_type", "direction"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_rejections_total",
			Help:      "Movimientos rechazados por stock insuficiente.",
		}, []string{"doc_type"}),
		confirms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_confirmations_total",
			Help:      "Intentos de confirmación de documentos por resultado.",
		}, []string{"doc_type", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_confirmation_duration_seconds",
			Help:      "Duración de la confirmación de documentos.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"doc_type"}),
	}
	reg.MustRegister(m.movements, m.units, m.rejected, m.confirms, m.duration)
	return m
}

// MovementApplied cuenta un movimiento y sus unidades.
func (m *LedgerMetrics) MovementApplied(docType entity.DocType, quantityChange int64) {
	if m == nil || m.movements == nil {
		return
	}
	direction, units := "in", quantityChange
	if quantityChange < 0 {
		direction, units = "out", -quantityChange
	}
	m.movements.WithLabelValues(label(string(docType)), direction).Inc()
	m.units.WithLabelValues(label(string(docType)), direction).Add(float64(units))
}

// MovementRejected cuenta un rechazo por stock insuficiente.
func (m *LedgerMetrics) MovementRejected(docType entity.DocType) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(label(string(docType))).Inc()
}

// ConfirmObserved registra el resultado y la duración de una confirmación.
func (m *LedgerMetrics) ConfirmObserved(docType entity.DocType, result string, elapsed time.Duration) {
	if m == nil || m.confirms == nil {
		return
	}
	m.confirms.WithLabelValues(label(string(docType)), label(result)).Inc()
	m.duration.WithLabelValues(label(string(docType))).Observe(elapsed.Seconds())
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
