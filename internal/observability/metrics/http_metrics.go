package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics exposes Prometheus primitives scraped via /metrics.
type HTTPMetrics struct {
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	invoiceAmount   *prometheus.HistogramVec
	scheduleEntries *prometheus.HistogramVec
}

// NewHTTPMetrics registers and returns the HTTP-level instruments.
func NewHTTPMetrics() *HTTPMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadloom_http_requests_total",
		Help: "Counts HTTP requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leadloom_http_request_duration_seconds",
		Help:    "HTTP request latency per method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	invoiceAmount := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leadloom_invoice_amount_minor",
		Help:    "Invoice total distribution in minor units.",
		Buckets: []float64{1000, 10000, 50000, 100000, 500000, 1000000, 5000000},
	}, []string{"currency"})

	scheduleEntries := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leadloom_schedule_entries",
		Help:    "Generated schedule entry count distribution.",
		Buckets: []float64{1, 2, 4, 6, 12, 24, 60, 120},
	}, []string{"kind"})

	prometheus.MustRegister(requests, duration, invoiceAmount, scheduleEntries)

	return &HTTPMetrics{
		requests:        requests,
		duration:        duration,
		invoiceAmount:   invoiceAmount,
		scheduleEntries: scheduleEntries,
	}
}

// ObserveRequest records a completed HTTP request.
func (m *HTTPMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	routeLabel := sanitizeLabel(route)
	m.requests.WithLabelValues(method, routeLabel, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, routeLabel).Observe(elapsed.Seconds())
}

// ObserveInvoiceAmount records an invoice total in minor units.
func (m *HTTPMetrics) ObserveInvoiceAmount(currency string, totalMinor int64) {
	if m == nil {
		return
	}
	m.invoiceAmount.WithLabelValues(sanitizeLabel(currency)).Observe(float64(totalMinor))
}

// ObserveScheduleEntries records the size of a generated schedule.
func (m *HTTPMetrics) ObserveScheduleEntries(kind string, count int) {
	if m == nil {
		return
	}
	m.scheduleEntries.WithLabelValues(sanitizeLabel(kind)).Observe(float64(count))
}

// GinMiddleware instruments each request with the HTTP counters.
func (m *HTTPMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func sanitizeLabel(val string) string {
	if val == "" {
		return "unknown"
	}
	return val
}
