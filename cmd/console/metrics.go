package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// consoleMetrics are the console's own HTTP metrics. Upstream API metrics are
// registered by the api package on the same registry.
type consoleMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newConsoleMetrics(reg prometheus.Registerer) *consoleMetrics {
	m := &consoleMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served by the console",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "console",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests served by the console in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	return sr.ResponseWriter.Write(b)
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

// instrument records a request against route, the pattern it was registered
// under, so that ids in the path do not explode label cardinality.
func (app *applicationDependencies) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(sr, r)

		status := sr.status
		if status == 0 {
			status = http.StatusOK
		}
		app.metrics.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		app.metrics.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// metricsHandler serves the private registry.
func (app *applicationDependencies) metricsHandler() http.Handler {
	return promhttp.HandlerFor(app.gatherer, promhttp.HandlerOpts{})
}
