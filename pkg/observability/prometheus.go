package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements every hook interface with Prometheus
// collectors. A single value can be registered for all categories.
type PrometheusHooks struct {
	operations    *prometheus.CounterVec
	opDuration    *prometheus.HistogramVec
	notifications *prometheus.CounterVec
	trees         prometheus.Gauge
	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	cacheEvents   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	requests      *prometheus.CounterVec
	reqDuration   *prometheus.HistogramVec
}

var (
	_ EditorHooks = (*PrometheusHooks)(nil)
	_ StoreHooks  = (*PrometheusHooks)(nil)
	_ CacheHooks  = (*PrometheusHooks)(nil)
	_ HTTPHooks   = (*PrometheusHooks)(nil)
)

// NewPrometheusHooks creates the collectors and registers them with reg.
// It panics if a collector is already registered, like
// prometheus.MustRegister.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bteditor_operations_total",
			Help: "Editor operations by name and outcome.",
		}, []string{"op", "outcome"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bteditor_operation_duration_seconds",
			Help:    "Duration of editor operations.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bteditor_notifications_total",
			Help: "User-facing notifications by level.",
		}, []string{"level"}),
		trees: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bteditor_trees",
			Help: "Number of trees in the session.",
		}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bteditor_store_operations_total",
			Help: "Project store calls by backend, operation and outcome.",
		}, []string{"backend", "op", "outcome"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "bteditor_store_duration_seconds",
			Help: "Duration of project store calls.",
		}, []string{"backend", "op"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bteditor_cache_events_total",
			Help: "Render cache hits, misses and writes.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bteditor_cache_written_bytes_total",
			Help: "Bytes written to the render cache.",
		}, []string{"key_type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bteditor_http_requests_total",
			Help: "HTTP responses by route and status.",
		}, []string{"method", "route", "status"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "bteditor_http_request_duration_seconds",
			Help: "HTTP request latency.",
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		h.operations, h.opDuration, h.notifications, h.trees,
		h.storeOps, h.storeDuration,
		h.cacheEvents, h.cacheBytes,
		h.requests, h.reqDuration,
	)
	return h
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnOperation(op string, d time.Duration, err error) {
	h.operations.WithLabelValues(op, outcome(err)).Inc()
	h.opDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnNotification(level string) {
	h.notifications.WithLabelValues(level).Inc()
}

func (h *PrometheusHooks) OnTreeCount(n int) { h.trees.Set(float64(n)) }

func (h *PrometheusHooks) OnStoreOp(_ context.Context, backend, op string, d time.Duration, err error) {
	h.storeOps.WithLabelValues(backend, op, outcome(err)).Inc()
	h.storeDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.reqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
