package middleware

import (
	"log"
	"net/http"
	"time"
)

// LoggingMiddleware logs one line per request with status and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrw := &responseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}

		next.ServeHTTP(wrw, r)

		log.Printf(
			"%s - %s %s %d %v",
			r.RemoteAddr,
			r.Method,
			r.URL.Path,
			wrw.status,
			time.Since(start),
		)
	})
}

// responseWriter captures the status code for logging and metrics.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
