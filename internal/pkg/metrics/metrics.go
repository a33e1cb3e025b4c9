/*
Package metrics holds the Prometheus collectors of the server on a private registry:
HTTP traffic, generation calls and entity store write failures.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "alumnilink"

// Collector owns the registry and every metric exported by the server.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	AICalls    *prometheus.CounterVec
	AIDuration *prometheus.HistogramVec

	StoreFailures *prometheus.CounterVec
	LiveSockets   prometheus.Gauge
}

// NewCollector creates a Collector with its own registry, so tests can build as
// many as they need.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AICalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "ai_calls_total",
				Help:      "Generation calls by task and outcome",
			},
			[]string{"task", "outcome"},
		),
		AIDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "ai_call_duration_seconds",
				Help:      "Generation call duration in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
			},
			[]string{"task"},
		),
		StoreFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "store_failures_total",
				Help:      "Entity store backend failures by operation and key",
			},
			[]string{"operation", "key"},
		),
		LiveSockets: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "websocket_connections",
				Help:      "Open realtime connections",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.AICalls,
		c.AIDuration,
		c.StoreFailures,
		c.LiveSockets,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests and observes their latency per chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(started).Seconds())
	})
}

// ObserveAI records one generation call.
func (c *Collector) ObserveAI(task, outcome string, took time.Duration) {
	if c == nil {
		return
	}
	c.AICalls.WithLabelValues(task, outcome).Inc()
	c.AIDuration.WithLabelValues(task).Observe(took.Seconds())
}

// StoreFailed records a failed backend read or write.
func (c *Collector) StoreFailed(operation, key string) {
	if c == nil {
		return
	}
	c.StoreFailures.WithLabelValues(operation, key).Inc()
}

// SocketOpened and SocketClosed track live realtime connections.
func (c *Collector) SocketOpened() {
	if c != nil {
		c.LiveSockets.Inc()
	}
}

func (c *Collector) SocketClosed() {
	if c != nil {
		c.LiveSockets.Dec()
	}
}
