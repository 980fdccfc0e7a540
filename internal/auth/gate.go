package auth

import (
	"net/http"

	"github.com/frahmantamala/vortex-demo/internal"
	"github.com/frahmantamala/vortex-demo/internal/session"
	"github.com/frahmantamala/vortex-demo/internal/transport"
	"github.com/frahmantamala/vortex-demo/internal/vortex"
)

type TokenVerifier interface {
	Verify(token string) (*session.Claims, bool)
}

// Gate resolves the session user of a request from its cookie.
type Gate struct {
	*transport.BaseHandler
	verifier TokenVerifier
	cookies  *CookieJar
}

func NewGate(baseHandler *transport.BaseHandler, verifier TokenVerifier, cookies *CookieJar) *Gate {
	return &Gate{
		BaseHandler: baseHandler,
		verifier:    verifier,
		cookies:     cookies,
	}
}

// CurrentUser returns the verified claims for r. A missing cookie
// short-circuits without touching the codec.
func (g *Gate) CurrentUser(r *http.Request) (*session.Claims, bool) {
	token := g.cookies.Read(r)
	if token == "" {
		return nil, false
	}
	return g.verifier.Verify(token)
}

// RequireAuth rejects requests without a valid session with 401 and
// otherwise attaches the claims to the request context.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := g.CurrentUser(r)
		if !ok {
			g.WriteAppError(w, r, internal.ErrAuthRequired)
			return
		}

		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), claims)))
	})
}

// AuthenticateVortexUser is the authenticateUser callback handed to the
// vortex plugin. A request without a session yields (nil, nil).
func (g *Gate) AuthenticateVortexUser(r *http.Request) (*vortex.Identity, error) {
	claims, ok := g.CurrentUser(r)
	if !ok {
		return nil, nil
	}
	return VortexIdentity(claims), nil
}

// VortexIdentity maps session claims onto the plugin's identity shape.
func VortexIdentity(c *session.Claims) *vortex.Identity {
	if c == nil {
		return nil
	}

	groups := make([]vortex.Group, 0, len(c.Groups))
	for _, g := range c.Groups {
		groups = append(groups, vortex.Group{Type: g.Type, ID: g.ID, Name: g.Name})
	}

	scopes := make([]string, len(c.AdminScopes))
	copy(scopes, c.AdminScopes)

	return &vortex.Identity{
		UserID: c.UserID,
		Identifiers: []vortex.Identifier{
			{Type: vortex.IdentifierEmail, Value: c.Email},
		},
		Groups:      groups,
		AdminScopes: scopes,
	}
}
