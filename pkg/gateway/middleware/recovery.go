package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"stratus-hq/helios/pkg/gateway/types"
)

// Recovery recovers from panics in downstream handlers, logs the panic with
// a stack trace, and returns a 500 without exposing internals to the client.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				types.WriteError(w, http.StatusInternalServerError,
					types.ErrTypeInternal, "an internal error occurred")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
