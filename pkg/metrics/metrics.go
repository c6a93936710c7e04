package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsCreated counts persisted notifications by type.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "innut_notifications_created_total",
			Help: "Total number of notifications persisted",
		},
		[]string{"type"},
	)

	// NotificationDeliveries counts per-channel push attempts by result (delivered|dropped).
	NotificationDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "innut_realtime_deliveries_total",
			Help: "Total number of realtime events pushed to channels",
		},
		[]string{"result"},
	)

	// RealtimeChannels tracks channels currently registered in the presence registry.
	RealtimeChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "innut_realtime_channels",
			Help: "Number of registered realtime channels",
		},
	)

	// RateLimitDecisions counts limiter outcomes (allow|deny|error).
	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "innut_rate_limit_decisions_total",
			Help: "Total number of rate limiter decisions",
		},
		[]string{"result"},
	)

	// MaintenancePurged counts rows removed by maintenance jobs.
	MaintenancePurged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "innut_maintenance_purged_total",
			Help: "Total number of rows removed by maintenance jobs",
		},
		[]string{"job"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "innut_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
