package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "comment_bot"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBConnectionsOpen        prometheus.Gauge
	DBConnectionsInUse       prometheus.Gauge
	DBConnectionsIdle        prometheus.Gauge
	DBConnectionsMax         prometheus.Gauge
	DBConnectionWaitTotal    prometheus.Counter
	DBConnectionWaitDuration prometheus.Counter
	DBQueryDuration          *prometheus.HistogramVec
	DBQueryErrors            *prometheus.CounterVec

	// External API metrics (model gateway, blog)
	ExternalAPIRequestDuration *prometheus.HistogramVec
	ExternalAPIRequestsTotal   *prometheus.CounterVec
	ExternalAPIErrors          *prometheus.CounterVec

	// Pipeline metrics
	CommentsCreatedTotal  *prometheus.CounterVec
	CommentsDeletedTotal  prometheus.Counter
	JobsEnqueuedTotal     prometheus.Counter
	JobsCompletedTotal    prometheus.Counter
	JobsFailedTotal       prometheus.Counter
	JobsSkippedTotal      prometheus.Counter
	DirectorRunsTotal     *prometheus.CounterVec
	DirectorFailuresTotal *prometheus.CounterVec
	DirectorRunDuration   prometheus.Histogram
	SweepDuration         prometheus.Histogram

	// Gauges refreshed by the collector
	PendingJobs      prometheus.Gauge
	ApprovedComments prometheus.Gauge
	ActivePersonas   prometheus.Gauge

	logger *zap.Logger

	statsMu          sync.Mutex
	lastWaitCount    int64
	lastWaitDuration time.Duration
}

// New creates and registers all metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, nil)
}

// NewWithLogger creates and registers all metrics with the default registry and a logger
func NewWithLogger(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "endpoint"},
		),

		DBConnectionsOpen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Current number of open database connections",
		}),
		DBConnectionsInUse: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "Current number of in-use database connections",
		}),
		DBConnectionsIdle: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Current number of idle database connections",
		}),
		DBConnectionsMax: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_max",
			Help:      "Maximum number of open database connections configured",
		}),
		DBConnectionWaitTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_connection_wait_total",
			Help:      "Total number of times waited for a database connection",
		}),
		DBConnectionWaitDuration: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_connection_wait_duration_seconds_total",
			Help:      "Total duration waited for database connections in seconds",
		}),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation", "table"},
		),
		DBQueryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_query_errors_total",
				Help:      "Total number of database query errors",
			},
			[]string{"operation", "table"},
		),

		ExternalAPIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "external_api_request_duration_seconds",
				Help:      "External API request duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"endpoint", "status"},
		),
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "external_api_requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"endpoint", "method", "status"},
		),
		ExternalAPIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "external_api_errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"endpoint", "error_type"},
		),

		CommentsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comments_created_total",
				Help:      "Total number of comments created, by source",
			},
			[]string{"source"},
		),
		CommentsDeletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_deleted_total",
			Help:      "Total number of comments removed by administrators",
		}),
		JobsEnqueuedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_enqueued_total",
			Help:      "Total number of scheduled jobs created",
		}),
		JobsCompletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_completed_total",
			Help:      "Total number of scheduled jobs completed",
		}),
		JobsFailedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_failed_total",
			Help:      "Total number of scheduled job attempts that failed and were returned to pending",
		}),
		JobsSkippedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_skipped_total",
			Help:      "Total number of due jobs skipped because another worker claimed them",
		}),
		DirectorRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "director_runs_total",
				Help:      "Total number of director runs, by outcome",
			},
			[]string{"outcome"},
		),
		DirectorFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "director_failures_total",
				Help:      "Total number of director failures, by stage",
			},
			[]string{"stage"},
		),
		DirectorRunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "director_run_duration_seconds",
			Help:      "Director run duration in seconds",
			Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of one sweep over due jobs in seconds",
			Buckets:   []float64{.01, .1, 1, 5, 10, 30, 60, 120, 300, 600},
		}),

		PendingJobs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_jobs",
			Help:      "Current number of pending scheduled jobs",
		}),
		ApprovedComments: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "approved_comments",
			Help:      "Current number of approved comments",
		}),
		ActivePersonas: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_personas",
			Help:      "Current number of active personas",
		}),

		logger: logger,
	}
}

// safeExecute wraps metric operations with panic recovery.
// A nil receiver is a valid no-op so components can run without metrics.
func (m *Metrics) safeExecute(operation string, fn func()) {
	if m == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in metrics operation",
				zap.String("operation", operation),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
