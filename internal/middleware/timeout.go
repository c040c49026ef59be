package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Timeout bounds a request with a deadline and answers 408 when the handler
// has not responded by then. Event streams pass through untouched.
func Timeout(timeout time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if timeout <= 0 || IsStreamRequest(r) || IsWebhookRequest(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{ResponseWriter: w}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case p := <-panicked:
				panic(p)
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.timedOut = true
				if !tw.wroteHeader && errors.Is(ctx.Err(), context.DeadlineExceeded) {
					WriteError(w, r, http.StatusRequestTimeout, ErrorCodeRequestTimeout, ErrorMessageRequestTimeout)
				}
			}
		})
	}
}

// timeoutWriter discards whatever the handler writes after the deadline fired.
type timeoutWriter struct {
	http.ResponseWriter

	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.wroteHeader = true
		tw.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

// IsStreamRequest reports whether r asks for a server-sent event stream.
func IsStreamRequest(r *http.Request) bool {
	if strings.HasSuffix(r.URL.Path, "/stream") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

// IsWebhookRequest reports whether r is a provider callback. Callbacks are
// acknowledged by the handler itself and must not be throttled or cut short.
func IsWebhookRequest(r *http.Request) bool {
	return r.Method == http.MethodPost && strings.TrimSuffix(r.URL.Path, "/") == "/webhook"
}
