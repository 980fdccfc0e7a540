package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/vortex-demo/internal"
	"github.com/frahmantamala/vortex-demo/internal/transport"
	"github.com/frahmantamala/vortex-demo/pkg/logger"
)

// RecoveryMiddleware turns a panic into the generic 500 envelope. The panic
// value and stack only go to the log.
func RecoveryMiddleware(lg *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(lg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.From(r.Context()).Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"url", r.URL.String(),
					"stack", string(debug.Stack()))

				status, body := internal.ErrInternal.ToHTTPResponse()
				base.WriteJSON(w, status, body)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
