package auth

import (
	"net/http"

	"github.com/frahmantamala/vortex-demo/internal"
	"github.com/frahmantamala/vortex-demo/internal/session"
	"github.com/frahmantamala/vortex-demo/internal/transport"
	"github.com/frahmantamala/vortex-demo/internal/user"
	"github.com/frahmantamala/vortex-demo/pkg/logger"
)

type Authenticator interface {
	Authenticate(email, password string) (*user.User, bool)
}

type TokenSigner interface {
	Sign(claims session.Claims) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Users   Authenticator
	Tokens  TokenSigner
	Cookies *CookieJar
	Gate    *Gate
}

func NewHandler(baseHandler *transport.BaseHandler, users Authenticator, tokens TokenSigner, cookies *CookieJar, gate *Gate) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Users:       users,
		Tokens:      tokens,
		Cookies:     cookies,
		Gate:        gate,
	}
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context())

	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	u, ok := h.Users.Authenticate(dto.Email, dto.Password)
	if !ok {
		log.Warn("login failed", "reason", "invalid credentials")
		h.WriteAppError(w, r, internal.ErrInvalidCredentials)
		return
	}

	token, err := h.Tokens.Sign(session.ClaimsFromUser(u))
	if err != nil {
		h.WriteAppError(w, r, internal.NewInternalError("failed to create session", err))
		return
	}

	h.Cookies.Set(w, token)
	log.Info("user logged in", "user_id", u.ID)

	h.WriteJSON(w, http.StatusOK, LoginResponse{Success: true, User: u.Public()})
}

// Logout handles POST /api/auth/logout. It always succeeds; the token itself
// stays valid until it expires.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.Clear(w)
	h.WriteJSON(w, http.StatusOK, LogoutResponse{Success: true})
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.Gate.CurrentUser(r)
	if !ok {
		h.WriteAppError(w, r, internal.ErrAuthRequired)
		return
	}
	h.WriteJSON(w, http.StatusOK, MeResponse{User: claims.User()})
}
