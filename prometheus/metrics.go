package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	AdminLoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "muob_admin_login_total",
			Help: "Total number of admin login attempts",
		},
	)

	UserLoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "muob_user_login_total",
			Help: "Total number of creator login attempts",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "muob_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "muob_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "invalid_credentials", "invalid_token", "missing_token" etc.
	)

	// Webhook events by outcome
	WebhookEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "muob_webhook_events_total",
			Help: "Total number of Tally webhook events by outcome",
		},
		[]string{"outcome"}, // "created", "duplicate", "no_brief", "ignored", "error"
	)

	// Submissions imported at brief creation
	SubmissionsImportedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "muob_submissions_imported_total",
			Help: "Total number of submissions imported during brief creation",
		},
	)

	// Outbound Tally API errors
	TallyErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "muob_tally_errors_total",
			Help: "Total number of Tally API call failures",
		},
		[]string{"endpoint"}, // "forms" or "submissions"
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "muob_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "muob_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update"
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(AdminLoginCounter)
	prometheus.MustRegister(UserLoginCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(WebhookEventCounter)
	prometheus.MustRegister(SubmissionsImportedCounter)
	prometheus.MustRegister(TallyErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			// Record metrics
			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordWebhookEvent records a webhook event by outcome
func RecordWebhookEvent(outcome string) {
	WebhookEventCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordTallyError records an outbound Tally API failure
func RecordTallyError(endpoint string) {
	TallyErrorCounter.With(prometheus.Labels{"endpoint": endpoint}).Inc()
}
