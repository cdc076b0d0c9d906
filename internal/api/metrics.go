package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus vectors for upstream API calls.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the upstream metric vectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "upstream_requests_total",
			Help:      "Total number of requests sent to the inventory API",
		}, []string{"method", "path", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "console",
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of requests sent to the inventory API in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	reg.MustRegister(m.Requests, m.Duration)
	return m
}

func (m *Metrics) observe(method, path, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, path, outcome).Inc()
	m.Duration.WithLabelValues(method, path).Observe(d.Seconds())
}

func outcomeOf(env *Envelope, err error) string {
	switch {
	case err != nil:
		return "error"
	case env.NotFound():
		return "not_found"
	case env.Success:
		return "success"
	default:
		return "failure"
	}
}
