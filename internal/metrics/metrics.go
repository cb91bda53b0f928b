// Package metrics defines Prometheus metrics for localityd.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "localityd_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localityd_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localityd_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	EditsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localityd_edits_total",
			Help: "Locality edits by mode (create, update, noop)",
		},
		[]string{"mode"},
	)

	ClusteredPoints = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "localityd_clustered_points",
			Help:    "Number of localities fed into one clustering pass",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "localityd_audit_queue_depth",
			Help: "Current audit queue depth",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "localityd_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	LocalityCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "localityd_localities_total",
			Help: "Total locality count",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		EditsTotal, ClusteredPoints, AuditQueueDepth,
		WSConnections, LocalityCount,
	)
}
