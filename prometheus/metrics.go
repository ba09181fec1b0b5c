package prometheus

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrikleri
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafe_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafe_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Export metrikleri
	ExportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafe_export_runs_total",
			Help: "Total number of sheet export runs by result",
		},
		[]string{"result"},
	)
	ExportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kafe_export_duration_seconds",
			Help:    "Duration of sheet export runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Sipariş metrikleri
	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kafe_orders_created_total",
			Help: "Total number of orders created",
		},
	)
)

// MetricsMiddleware - her isteği sayar ve süresini ölçer.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Hata dönen istekte ErrorHandler cevabı henüz yazmamıştır; durum
		// kodu cevaptan değil hatanın kendisinden okunur
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}

		path := c.Route().Path
		HttpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		HttpRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler - /metrics endpoint'i (promhttp, fiber adaptörüyle).
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
