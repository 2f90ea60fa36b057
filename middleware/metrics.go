package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wimb_http_requests_total",
		Help: "Total HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wimb_http_request_duration_seconds",
		Help:    "HTTP request handling duration.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"path"})
)

// MetricsMiddleware records request counts and latency per endpoint.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrw := &responseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}

		next.ServeHTTP(wrw, r)

		httpRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrw.status)).Inc()
		httpDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
