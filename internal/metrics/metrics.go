// Package metrics registers the Prometheus instrumentation for the server.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Realtime metrics
	WebsocketConnections prometheus.Gauge
	WebsocketMessages    prometheus.CounterVec

	// Notification fan-out metrics: failures here are otherwise invisible to
	// the user whose action triggered the notification.
	NotificationsPersisted prometheus.CounterVec
	NotificationsPushed    prometheus.CounterVec
	NotificationFailures   prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			WebsocketConnections: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "websocket_connections",
					Help: "Number of currently registered websocket connections",
				},
			),
			WebsocketMessages: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "websocket_messages_total",
					Help: "Websocket messages by direction (rx/tx)",
				},
				[]string{"direction"},
			),
			NotificationsPersisted: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_persisted_total",
					Help: "Notification rows written, by type",
				},
				[]string{"type"},
			),
			NotificationsPushed: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_pushed_total",
					Help: "Notifications pushed to a live connection, by type",
				},
				[]string{"type"},
			),
			NotificationFailures: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notification_failures_total",
					Help: "Notification persistence failures, by type",
				},
				[]string{"type"},
			),
			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Cache hits by cache name",
				},
				[]string{"cache"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Cache misses by cache name",
				},
				[]string{"cache"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it if needed
func Get() *Metrics {
	return Initialize()
}
