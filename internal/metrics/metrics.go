// Package metrics exposes Prometheus metrics for the dashboard with the
// dashboard_ prefix.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BackendRequestsTotal counts calls to the sell-bot backend.
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_backend_requests_total",
			Help: "Total number of requests sent to the backend",
		},
		[]string{"method", "route", "status"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_backend_request_duration_seconds",
			Help:    "Backend request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	BackendUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_backend_up",
			Help: "1 if the last backend health probe succeeded",
		},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_login_attempts_total",
			Help: "Admin login attempts by outcome",
		},
		[]string{"status"},
	)

	SessionExpiries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_session_expiries_total",
			Help: "Sessions ended by a 401 from the backend",
		},
	)

	SessionsLive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_sessions_live",
			Help: "Browser sessions currently held in memory",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "Total number of dashboard HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// ObserveBackend records one backend call. status 0 means a transport failure.
func ObserveBackend(method, route string, status int, took time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	BackendRequestsTotal.WithLabelValues(method, route, code).Inc()
	BackendRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
