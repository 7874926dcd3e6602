package middleware

import (
	"log/slog"
	"net/http"

	"ptohub/internal/transport/http/api"
)

// Recoverer converts panics into a structured 500 so a fault in one request
// never takes down the process or leaks a stack to the caller.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "path", r.URL.Path, "panic", rec, "requestId", GetRequestID(r.Context()))
				api.Fail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", GetRequestID(r.Context()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
