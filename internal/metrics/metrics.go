package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters for the lead pipeline.
type LeadMetrics struct {
	mutationTotal *prometheus.CounterVec
	importTotal   *prometheus.CounterVec
	importRows    *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		mutationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbook",
			Subsystem: "leads",
			Name:      "mutation_total",
			Help:      "Total lead mutations by operation",
		}, []string{"operation"}),
		importTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbook",
			Subsystem: "imports",
			Name:      "batch_total",
			Help:      "Total CSV import batches by outcome",
		}, []string{"outcome"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbook",
			Subsystem: "imports",
			Name:      "rows_total",
			Help:      "Total CSV import rows by disposition",
		}, []string{"disposition"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.mutationTotal, m.importTotal, m.importRows)
	return m
}

func (m *LeadMetrics) ObserveMutation(operation string) {
	if m == nil {
		return
	}
	m.mutationTotal.WithLabelValues(operation).Inc()
}

func (m *LeadMetrics) ObserveImport(outcome string, inserted, invalid int) {
	if m == nil {
		return
	}
	m.importTotal.WithLabelValues(outcome).Inc()
	m.importRows.WithLabelValues("inserted").Add(float64(inserted))
	m.importRows.WithLabelValues("invalid").Add(float64(invalid))
}
