package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

// RecoveryMiddleware turns panics into a generic JSON 500. The stack trace
// goes to the server log only, never to the client.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic recovered: %v\nStack trace:\n%s", err, debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error": "Internal server error", "success": false}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
