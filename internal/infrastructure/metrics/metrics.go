package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Loan metrics
	LoansCreated  prometheus.Counter
	LoansDeleted  prometheus.Counter
	LoansByStatus *prometheus.GaugeVec
	OverdueLoans  prometheus.Gauge
	OverdueSwept  prometheus.Counter

	// Payment metrics
	PaymentsPosted  prometheus.Counter
	PaymentAmount   prometheus.Histogram
	PaymentErrors   *prometheus.CounterVec
	PaymentDuration prometheus.Histogram

	// Portfolio metrics
	PortfolioOutstanding prometheus.Gauge

	// Client metrics
	ClientsCreated prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisDuration   *prometheus.HistogramVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts   *prometheus.CounterVec
	AuthFailures   *prometheus.CounterVec
	ActiveSessions prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Loan metrics
		LoansCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "microloan_loans_created_total",
			Help: "Total number of loans originated",
		}),
		LoansDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "microloan_loans_deleted_total",
			Help: "Total number of loans deleted",
		}),
		LoansByStatus: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "microloan_loans_by_status",
				Help: "Current number of loans by status",
			},
			[]string{"status"},
		),
		OverdueLoans: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "microloan_overdue_loans",
			Help: "Number of overdue loans at last evaluation",
		}),
		OverdueSwept: promauto.NewCounter(prometheus.CounterOpts{
			Name: "microloan_overdue_swept_total",
			Help: "Total number of loans transitioned to OVERDUE by the sweeper",
		}),

		// Payment metrics
		PaymentsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "microloan_payments_posted_total",
			Help: "Total number of payments posted",
		}),
		PaymentAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "microloan_payment_amount",
			Help:    "Payment amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		PaymentErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microloan_payment_errors_total",
				Help: "Total number of payment posting errors by type",
			},
			[]string{"error_type"},
		),
		PaymentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "microloan_payment_duration_seconds",
			Help:    "Duration of payment postings",
			Buckets: prometheus.DefBuckets,
		}),

		// Portfolio metrics
		PortfolioOutstanding: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "microloan_portfolio_outstanding",
			Help: "Total outstanding balance across the book at last evaluation",
		}),

		// Client metrics
		ClientsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "microloan_clients_created_total",
			Help: "Total number of clients registered",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microloan_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "microloan_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microloan_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "microloan_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "microloan_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microloan_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microloan_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "microloan_redis_duration_seconds",
				Help:    "Redis operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microloan_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microloan_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microloan_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "microloan_active_sessions",
			Help: "Current number of active sessions",
		}),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microloan_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Audit metrics
		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "microloan_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
