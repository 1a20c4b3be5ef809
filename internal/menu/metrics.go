package menu

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records orchestration outcomes.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	persist  *prometheus.CounterVec
}

// NewMetrics creates and registers the orchestrator metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_requests_total",
			Help: "Menu requests by result.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "menu_request_duration_seconds",
			Help:    "Menu orchestration latency by result.",
			Buckets: []float64{.005, .025, .1, .5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
		persist: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_cache_writes_total",
			Help: "Cache writes by status.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.persist)
	}
	return m
}

func (m *Metrics) observe(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(result).Inc()
	m.duration.WithLabelValues(result).Observe(elapsed.Seconds())
}

func (m *Metrics) write(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.persist.WithLabelValues(status).Inc()
}
