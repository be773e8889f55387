package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xsidious/constructionmanagment-sub000/pkg/config"
)

const version = "1.0.0"

// Counter metrics
var (
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contractor_login_total",
			Help: "Total number of login attempts",
		},
	)

	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contractor_register_total",
			Help: "Total number of user registrations",
		},
	)

	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractor_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	StatusCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractor_http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"category"},
	)

	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractor_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // missing_token, invalid_token, invalid_credentials ...
	)

	RequestErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractor_request_errors_total",
			Help: "Total number of failed requests by error kind",
		},
		[]string{"kind"},
	)

	AuthorizationDeniedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractor_authorization_denied_total",
			Help: "Total number of requests rejected by membership or permission checks",
		},
		[]string{"reason", "permission"},
	)

	CompanyOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractor_company_operations_total",
			Help: "Total number of company, member, customer and project operations",
		},
		[]string{"resource", "operation"},
	)

	DocumentOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractor_document_operations_total",
			Help: "Total number of quote and invoice operations",
		},
		[]string{"document", "operation"},
	)

	PaymentCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractor_payments_total",
			Help: "Total number of recorded payments by method",
		},
		[]string{"method"},
	)

	PaymentAmountCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contractor_payments_amount_total",
			Help: "Sum of recorded payment amounts",
		},
	)

	ChatMessageCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contractor_chat_messages_total",
			Help: "Total number of chat messages posted",
		},
	)

	EventPublishErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractor_event_publish_errors_total",
			Help: "Total number of events that failed to publish",
		},
		[]string{"event"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contractor_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contractor_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Gauge metrics
var (
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "contractor_info",
			Help: "Information about the contractor service",
		},
		[]string{"version", "environment"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(StatusCategoryCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(RequestErrorCounter)
	prometheus.MustRegister(AuthorizationDeniedCounter)
	prometheus.MustRegister(CompanyOperationCounter)
	prometheus.MustRegister(DocumentOperationCounter)
	prometheus.MustRegister(PaymentCounter)
	prometheus.MustRegister(PaymentAmountCounter)
	prometheus.MustRegister(ChatMessageCounter)
	prometheus.MustRegister(EventPublishErrorCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)
}

// InitMetrics publishes the service info gauge
func InitMetrics(cfg *config.Config) {
	InfoGauge.With(prometheus.Labels{"version": version, "environment": cfg.Server.Env}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures a database operation; use as
// defer TrackDBOperation("insert")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.With(prometheus.Labels{"operation": operation}).Observe(time.Since(start).Seconds())
	}
}

// MetricsMiddleware captures request counts, durations and status categories
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			labels := prometheus.Labels{
				"endpoint": c.Path(),
				"method":   c.Request().Method,
				"status":   strconv.Itoa(status),
			}
			RequestDuration.With(labels).Observe(time.Since(start).Seconds())
			HTTPRequestCounter.With(labels).Inc()
			if category := statusCategory(status); category != "" {
				StatusCategoryCounter.With(prometheus.Labels{"category": category}).Inc()
			}

			return nil
		}
	}
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordRequestError records a failed request by error kind
func RecordRequestError(kind string) {
	RequestErrorCounter.With(prometheus.Labels{"kind": kind}).Inc()
}

// RecordAuthorizationDenied records a membership or permission rejection
func RecordAuthorizationDenied(reason, permission string) {
	AuthorizationDeniedCounter.With(prometheus.Labels{"reason": reason, "permission": permission}).Inc()
}

// RecordCompanyOperation records an operation on a company-scoped resource
func RecordCompanyOperation(resource, operation string) {
	CompanyOperationCounter.With(prometheus.Labels{"resource": resource, "operation": operation}).Inc()
}

// RecordDocumentOperation records a quote or invoice operation
func RecordDocumentOperation(document, operation string) {
	DocumentOperationCounter.With(prometheus.Labels{"document": document, "operation": operation}).Inc()
}

// RecordPayment records a payment and its amount
func RecordPayment(method string, amount float64) {
	PaymentCounter.With(prometheus.Labels{"method": method}).Inc()
	PaymentAmountCounter.Add(amount)
}

// RecordChatMessage records a posted chat message
func RecordChatMessage() {
	ChatMessageCounter.Inc()
}

// RecordEventPublishError records an event that could not be published
func RecordEventPublishError(event string) {
	EventPublishErrorCounter.With(prometheus.Labels{"event": event}).Inc()
}
