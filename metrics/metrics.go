package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes counters/histograms for the HTTP surface and the scheduler.
// All methods are safe on a nil receiver.
type Metrics struct {
	gatherer        prometheus.Gatherer
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	bookings        *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	autoCompletions prometheus.Counter
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caresync",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "caresync",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caresync",
			Subsystem: "appointments",
			Name:      "booked_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caresync",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Appointment status transitions by target status",
		}, []string{"status"}),
		autoCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "caresync",
			Subsystem: "jobs",
			Name:      "auto_completed_total",
			Help:      "Appointments completed by the completion job",
		}),
	}
	reg.MustRegister(m.httpRequests, m.httpLatency, m.bookings, m.transitions, m.autoCompletions)
	return m
}

func (m *Metrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveTransition(status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveAutoCompleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.autoCompletions.Add(float64(n))
}

// Middleware records one sample per request, labelled by the matched route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
