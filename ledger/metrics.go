package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "naughty_ledger"

type metrics struct {
	invocations *prometheus.CounterVec
	duration    prometheus.Histogram
	events      *prometheus.CounterVec
	height      prometheus.Gauge
}

// newMetrics creates ledger metrics. If reg is nil, metrics are not
// registered anywhere.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "invocations_total",
			Help:      "Total number of ledger invocations by method and status",
		}, []string{"method", "status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "invocation_duration_seconds",
			Help:      "Duration of ledger invocations",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "audit_events_total",
			Help:      "Total number of audit log events by name",
		}, []string{"name"}),
		height: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "audit_height",
			Help:      "Number of entries in the audit log",
		}),
	}
}

func (m *metrics) invocation(method string, ok bool, d time.Duration) {
	status := "ok"
	if !ok {
		status = "failed"
	}

	m.invocations.WithLabelValues(method, status).Inc()
	m.duration.Observe(d.Seconds())
}
