package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"stratus-hq/helios/pkg/gateway/types"
	"stratus-hq/helios/pkg/telemetry/logging"
)

// Timeout bounds the entire request pipeline, including provider retries
// and fallback. On expiry the request context is cancelled and a 504 is
// returned. A zero timeout disables the bound.
//
// The handler runs on its own goroutine and may outlive the deadline; it
// writes through a guarded writer, so once the timeout response is committed
// any late handler writes are discarded instead of racing on the underlying
// ResponseWriter.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{w: w, h: make(http.Header)}

			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				// Claim the response: from here on the handler's writes are
				// discarded, whether the context expired or the client went
				// away. If the handler already committed (its own deadline
				// mapping, typically) there is nothing left to write.
				claimed := tw.timeout()
				if !errors.Is(ctx.Err(), context.DeadlineExceeded) || !claimed {
					return
				}
				logging.FromContext(r.Context()).Error("request timed out",
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout,
				)
				types.WriteError(w, http.StatusGatewayTimeout,
					types.ErrTypeTimeout, "request took too long to complete")
			}
		})
	}
}

// timeoutWriter serializes the handler goroutine and the timeout path on one
// ResponseWriter. The handler gets a private header map; headers reach the
// underlying writer only when the handler commits before the deadline.
type timeoutWriter struct {
	w http.ResponseWriter
	h http.Header

	mu          sync.Mutex
	timedOut    bool
	wroteHeader bool
}

func (tw *timeoutWriter) Header() http.Header { return tw.h }

func (tw *timeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.writeHeaderLocked(http.StatusOK)
	}
	return tw.w.Write(p)
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	dst := tw.w.Header()
	for k, v := range tw.h {
		dst[k] = v
	}
	tw.wroteHeader = true
	tw.w.WriteHeader(code)
}

// timeout marks the writer timed out and reports whether the timeout
// response still needs to be written. After it returns true the underlying
// writer belongs exclusively to the timeout path.
func (tw *timeoutWriter) timeout() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timedOut = true
	return !tw.wroteHeader
}
