package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Total number of statement operations recorded",
		},
		[]string{"type"},
	)

	operationAmountTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operation_amount_total",
			Help: "Sum of the amounts recorded per operation type",
		},
		[]string{"type"},
	)

	rejectedWithdrawals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_withdrawals_rejected_total",
			Help: "Total number of withdrawals rejected for insufficient funds",
		},
	)

	customersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_customers_created_total",
			Help: "Total number of customer accounts created",
		},
	)
)

// StatusRecorder wraps http.ResponseWriter to capture the status code.
type StatusRecorder struct {
	http.ResponseWriter
	StatusCode int
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, StatusCode: http.StatusOK}
}

func (rw *StatusRecorder) WriteHeader(code int) {
	rw.StatusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency, labelled by route template
// so CPF values or query strings never become label values.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := NewStatusRecorder(w)

		next.ServeHTTP(rw, r)

		path := "unmatched"
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.StatusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordOperation(opType string, amount float64) {
	operationsTotal.WithLabelValues(opType).Inc()
	operationAmountTotal.WithLabelValues(opType).Add(amount)
}

func RecordRejectedWithdrawal() {
	rejectedWithdrawals.Inc()
}

func RecordCustomerCreated() {
	customersCreated.Inc()
}
