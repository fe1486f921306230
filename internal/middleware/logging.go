package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger returns a middleware that logs every request.
// It logs the method, path, status, user ID and duration. It must run after
// Authenticate for the user ID to be known. Server errors are
// logged at error level and client errors at warn.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			var userID int64
			if user := CurrentUser(r.Context()); user != nil {
				userID = user.ID
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"user_id", userID,
				"duration_ms", time.Since(start).Milliseconds(),
			}

			switch {
			case status >= 500:
				logger.Error("HTTP request", attrs...)
			case status >= 400:
				logger.Warn("HTTP request", attrs...)
			default:
				logger.Info("HTTP request", attrs...)
			}
		})
	}
}
