package vortex

import (
	"context"
	"net/http"
)

const (
	IdentifierEmail    = "email"
	IdentifierPhone    = "phone"
	IdentifierUsername = "username"
)

type Identifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type Group struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Identity is the host application's user as the plugin sees it.
type Identity struct {
	UserID      string       `json:"userId"`
	Identifiers []Identifier `json:"identifiers"`
	Groups      []Group      `json:"groups"`
	AdminScopes []string     `json:"adminScopes"`
}

// Identifier returns the first identifier value of the given type.
func (i *Identity) Identifier(kind string) (string, bool) {
	for _, id := range i.Identifiers {
		if id.Type == kind {
			return id.Value, true
		}
	}
	return "", false
}

func (i *Identity) InGroup(groupType, groupID string) bool {
	for _, g := range i.Groups {
		if g.Type == groupType && g.ID == groupID {
			return true
		}
	}
	return false
}

func (i *Identity) HasAdminScope(scope string) bool {
	for _, s := range i.AdminScopes {
		if s == scope {
			return true
		}
	}
	return false
}

// AuthenticateUserFunc resolves the caller of a plugin request. Returning
// (nil, nil) means the request is anonymous.
type AuthenticateUserFunc func(r *http.Request) (*Identity, error)

type identityKey struct{}

func withIdentity(ctx context.Context, who *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, who)
}

// IdentityFromContext returns the identity resolved for the current plugin request.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	who, ok := ctx.Value(identityKey{}).(*Identity)
	return who, ok && who != nil
}
