package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the guest sync service
type MetricsRegistry struct {
	// HTTP metrics (ops API)
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Queue metrics
	SyncJobsEnqueuedTotal  prometheus.CounterVec
	SyncJobsFailedTotal    prometheus.CounterVec
	SyncJobsSucceededTotal prometheus.Counter
	QueueLength            prometheus.Gauge
	QueuePending           prometheus.Gauge

	// Pipeline metrics
	GuestsFetchedTotal  prometheus.CounterVec
	GuestsMatchedTotal  prometheus.CounterVec
	GuestsInsertedTotal prometheus.CounterVec
	SyncDuration        prometheus.HistogramVec
	RateLimitHitsTotal  prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guestsync_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guestsync_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),

		SyncJobsEnqueuedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guestsync_jobs_enqueued_total",
				Help: "Total sync jobs enqueued by provider type",
			},
			[]string{"provider_type"},
		),
		SyncJobsFailedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guestsync_jobs_failed_total",
				Help: "Total sync jobs that ended in an error, by provider type",
			},
			[]string{"provider_type"},
		),
		SyncJobsSucceededTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "guestsync_jobs_succeeded_total",
				Help: "Total sync jobs completed successfully",
			},
		),
		QueueLength: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "guestsync_queue_length",
				Help: "Messages currently in the sync stream",
			},
		),
		QueuePending: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "guestsync_queue_pending",
				Help: "Delivered but unacknowledged messages in the consumer group",
			},
		),

		GuestsFetchedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guestsync_guests_fetched_total",
				Help: "Total guest entries fetched from providers",
			},
			[]string{"provider_type"},
		),
		GuestsMatchedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guestsync_guests_matched_total",
				Help: "Total guests matched to directory members",
			},
			[]string{"provider_type"},
		),
		GuestsInsertedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guestsync_guests_inserted_total",
				Help: "Total new guest rows persisted",
			},
			[]string{"provider_type"},
		),
		SyncDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guestsync_sync_duration_seconds",
				Help:    "Duration of one full event guest sync in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider_type"},
		),
		RateLimitHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guestsync_rate_limit_hits_total",
				Help: "Rate-limited responses observed from providers",
			},
			[]string{"provider_type"},
		),
	}
}
