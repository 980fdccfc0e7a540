package middleware

import (
	"net/http"

	"github.com/frahmantamala/vortex-demo/internal/session"
	"github.com/frahmantamala/vortex-demo/pkg/logger"
)

// UserLogContext adds the session user to the context logger. It belongs
// after the auth gate; without claims it is a no-op.
func UserLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := session.FromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "user_id", claims.UserID, "role", string(claims.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
