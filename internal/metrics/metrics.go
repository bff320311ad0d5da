// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the lot's business counters.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors the application updates.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec

	VehiclesRegistered prometheus.Counter
	VehiclesExited     prometheus.Counter
	FeesCollected      prometheus.Counter
	OverstaysDetected  prometheus.Counter
	ShiftsStarted      prometheus.Counter
	ShiftsEnded        prometheus.Counter
	Discrepancies      *prometheus.CounterVec
}

// New registers the application collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "parklot",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"method", "route", "status"}),
		VehiclesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "vehicles_registered_total",
			Help:      "Vehicles registered into the lot.",
		}),
		VehiclesExited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "vehicles_exited_total",
			Help:      "Vehicles checked out of the lot.",
		}),
		FeesCollected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "fees_collected_total",
			Help:      "Total parking fees charged, in currency units.",
		}),
		OverstaysDetected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "overstays_detected_total",
			Help:      "Vehicles flagged by the overstay sweep.",
		}),
		ShiftsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "shifts_started_total",
			Help:      "Shift sessions opened.",
		}),
		ShiftsEnded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "shifts_ended_total",
			Help:      "Shift sessions closed.",
		}),
		Discrepancies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "cash_discrepancies_total",
			Help:      "Closing cash discrepancies by classification.",
		}, []string{"classification"}),
	}
}

// GinMiddleware records request counts and latencies per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}
