package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so every process (and every test) gets a
// fresh set of collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	bookingsTotal       *prometheus.CounterVec
	paymentsSettled     *prometheus.CounterVec
	paymentConflicts    *prometheus.CounterVec
	webhooksTotal       *prometheus.CounterVec
	appointmentsExpired prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		bookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Booking attempts by outcome",
			},
			[]string{"outcome"},
		),
		paymentsSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_settled_total",
				Help: "Payment state changes applied, by resulting status and source",
			},
			[]string{"status", "source"},
		),
		paymentConflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_conflicts_total",
				Help: "Contradictory gateway signals",
			},
			[]string{"from", "to"},
		),
		webhooksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_webhooks_total",
				Help: "Webhook deliveries by result",
			},
			[]string{"result"},
		),
		appointmentsExpired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "appointments_expired_total",
				Help: "Pending appointments cancelled after the payment window",
			},
		),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.bookingsTotal,
		m.paymentsSettled,
		m.paymentConflicts,
		m.webhooksTotal,
		m.appointmentsExpired,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) RecordBooking(outcome string) {
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordSettled(status, source string) {
	m.paymentsSettled.WithLabelValues(status, source).Inc()
}

func (m *Metrics) RecordConflict(from, to string) {
	m.paymentConflicts.WithLabelValues(from, to).Inc()
}

func (m *Metrics) RecordWebhook(result string) {
	m.webhooksTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordExpired(n int) {
	m.appointmentsExpired.Add(float64(n))
}
