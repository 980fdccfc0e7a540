package demo

import (
	"net/http"
	"time"

	"github.com/frahmantamala/vortex-demo/internal"
	"github.com/frahmantamala/vortex-demo/internal/session"
	"github.com/frahmantamala/vortex-demo/internal/transport"
	"github.com/frahmantamala/vortex-demo/internal/user"
)

const ProtectedMessage = "This is a protected route. You are authenticated!"

type ProtectedResponse struct {
	Message   string          `json:"message"`
	User      user.PublicUser `json:"user"`
	Timestamp string          `json:"timestamp"`
}

type Handler struct {
	*transport.BaseHandler
	now func() time.Time
}

func NewHandler(baseHandler *transport.BaseHandler) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		now:         time.Now,
	}
}

// Protected handles GET /api/demo/protected. It must sit behind the auth
// gate, which attaches the session claims.
func (h *Handler) Protected(w http.ResponseWriter, r *http.Request) {
	claims, ok := session.FromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrAuthRequired)
		return
	}

	h.WriteJSON(w, http.StatusOK, ProtectedResponse{
		Message:   ProtectedMessage,
		User:      claims.User(),
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}
