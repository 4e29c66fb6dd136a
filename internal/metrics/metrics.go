// Package metrics provides Prometheus instrumentation for the pool engine.
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
	// BetsTotal counts bets accepted across all pools.
	BetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_bets_total",
		Help: "Total number of bets placed",
	})

	// WithdrawalsTotal counts pre-resolution stake refunds.
	WithdrawalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_withdrawals_total",
		Help: "Total number of stake withdrawals",
	})

	// ClaimsTotal counts successful winnings claims.
	ClaimsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_claims_total",
		Help: "Total number of winnings claims paid",
	})

	// ResolutionsTotal counts pool resolutions by settlement kind and
	// winner policy.
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pool_resolutions_total",
		Help: "Total pool resolutions",
	}, []string{"kind", "policy"})

	// RandomnessPending tracks pools parked in Resolving awaiting a
	// provider callback. A value stuck above zero means a provider has
	// gone quiet and those pools cannot settle without intervention.
	RandomnessPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pool_randomness_pending",
		Help: "Pools awaiting a randomness provider callback",
	})

	// ActivePools tracks the number of pools still taking bets.
	ActivePools = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pool_active_pools",
		Help: "Number of currently open pools",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pool_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pool_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pool_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
