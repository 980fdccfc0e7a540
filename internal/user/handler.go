package user

import (
	"net/http"

	"github.com/frahmantamala/vortex-demo/internal/transport"
)

// Lister is the read side of the credential store the handler needs.
type Lister interface {
	ListUsers() []PublicUser
}

type Handler struct {
	*transport.BaseHandler
	Users Lister
}

func NewHandler(baseHandler *transport.BaseHandler, users Lister) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Users:       users,
	}
}

type UsersResponse struct {
	Users []PublicUser `json:"users"`
}

// ListUsers handles GET /api/demo/users. It is public and read-only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, UsersResponse{Users: h.Users.ListUsers()})
}
