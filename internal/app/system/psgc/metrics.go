package psgc

import (
	"time"

	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
)

type clientMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) *clientMetrics {
	m := &clientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admissions_psgc_requests_total",
			Help: "PSGC lookups by level and outcome.",
		}, []string{"level", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admissions_psgc_request_duration_seconds",
			Help:    "PSGC lookup latency by level.",
			Buckets: prometheus.DefBuckets,
		}, []string{"level"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.latency)
	}
	return m
}

// observe is a no-op on a nil receiver so clients built without metrics
// need no checks at call sites.
func (m *clientMetrics) observe(level models.GeoLevel, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(string(level), outcome).Inc()
	m.latency.WithLabelValues(string(level)).Observe(d.Seconds())
}
