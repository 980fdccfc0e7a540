package user

import "slices"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Group is a legacy group membership carried alongside admin scopes.
type Group struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is the canonical account record. Role and Groups are the legacy
// authorization model, AdminScopes the newer capability tags.
type User struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"` // Never expose password hash
	Role         Role     `json:"role"`
	Groups       []Group  `json:"groups"`
	AdminScopes  []string `json:"adminScopes"`
}

// PublicUser is the projection returned over HTTP.
type PublicUser struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Role        Role     `json:"role"`
	Groups      []Group  `json:"groups"`
	AdminScopes []string `json:"adminScopes"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		Groups:      cloneGroups(u.Groups),
		AdminScopes: cloneScopes(u.AdminScopes),
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) HasAdminScope(scope string) bool {
	return slices.Contains(u.AdminScopes, scope)
}

func (u *User) clone() *User {
	cp := *u
	cp.Groups = cloneGroups(u.Groups)
	cp.AdminScopes = cloneScopes(u.AdminScopes)
	return &cp
}

func cloneGroups(groups []Group) []Group {
	if groups == nil {
		return []Group{}
	}
	return slices.Clone(groups)
}

func cloneScopes(scopes []string) []string {
	if scopes == nil {
		return []string{}
	}
	return slices.Clone(scopes)
}
