package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vortex-demo/pkg/logger"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID accepts the caller's X-Request-ID or generates one, exposes it
// through chi's GetReqID and stores lg, tagged with the id, as the context
// logger.
func RequestID(lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" || len(reqID) > 128 {
				reqID = uuid.NewString()
			}

			base := lg
			if base == nil {
				base = logger.From(r.Context())
			}

			ctx := context.WithValue(r.Context(), middleware.RequestIDKey, reqID)
			ctx = logger.Into(ctx, base.With("request_id", reqID))

			w.Header().Set(RequestIDHeader, reqID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
