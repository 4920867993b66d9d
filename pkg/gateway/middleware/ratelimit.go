package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"stratus-hq/helios/pkg/gateway/types"
	"stratus-hq/helios/pkg/ratelimit"
	"stratus-hq/helios/pkg/telemetry/metrics"
)

var tracer = otel.Tracer("stratus-hq/helios/pkg/gateway/middleware")

// RateLimit enforces per-client admission control. The client identity is
// the X-API-Key header when present, otherwise the client IP.
//
// Every response carries X-RateLimit-Limit, X-RateLimit-Remaining, and
// X-RateLimit-Reset (Unix epoch seconds). Denied requests get a 429 with a
// Retry-After header. A nil limiter disables admission control entirely.
func RateLimit(limiter *ratelimit.Limiter, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r)

			// The client key may be a credential, so it is not a span
			// attribute.
			_, span := tracer.Start(r.Context(), "gateway.admit")
			decision := limiter.Admit(key)
			span.SetAttributes(
				attribute.Bool("admitted", decision.Allowed),
				attribute.Int("limit", decision.Limit),
				attribute.Int("remaining", decision.Remaining),
			)
			span.End()

			if collector != nil {
				collector.RecordAdmission(decision.Allowed)
				collector.SetActiveKeys(limiter.KeyCount())
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

			if !decision.Allowed {
				retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				types.WriteError(w, http.StatusTooManyRequests,
					types.ErrTypeRateLimited, "rate limit exceeded, slow down")
				return
			}

			ctx := context.WithValue(r.Context(), ClientKeyKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
