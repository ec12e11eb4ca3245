package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ixadmin_http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ixadmin_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Traffic proxy
	UpstreamQueryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ixadmin_upstream_query_failures_total",
			Help: "Upstream traffic queries that failed and were treated as no data",
		},
		[]string{"host", "direction", "reason"},
	)

	UpstreamQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ixadmin_upstream_query_duration_seconds",
			Help:    "Latency of upstream monitoring API calls",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	TrafficSnapshots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ixadmin_traffic_snapshots_total",
			Help: "Traffic snapshots served, by data source",
		},
		[]string{"kind", "source"},
	)

	UpstreamUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ixadmin_upstream_up",
			Help: "1 when the last scheduled upstream health probe succeeded",
		},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ixadmin_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ixadmin_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ixadmin_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Live feed
	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ixadmin_live_clients",
			Help: "Connected live traffic websocket clients",
		},
	)
)

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request counts and latency keyed by the matched route
// template so path parameters do not explode label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveUpstream records the latency of one upstream call.
func ObserveUpstream(endpoint string, start time.Time) {
	UpstreamQueryDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
