package user

const (
	DemoAdminEmail    = "admin@example.com"
	DemoAdminPassword = "password123"
	DemoUserEmail     = "user@example.com"
	DemoUserPassword  = "userpass123"

	ScopeAutojoin = "autojoin"
)

var demoTeam = Group{Type: "team", ID: "team-1", Name: "Engineering"}

// DemoSeeds returns the fixed demo accounts. Passwords are public on purpose.
func DemoSeeds() []Seed {
	return []Seed{
		{
			ID:          "1",
			Email:       DemoAdminEmail,
			Password:    DemoAdminPassword,
			Role:        RoleAdmin,
			Groups:      []Group{demoTeam},
			AdminScopes: []string{ScopeAutojoin},
		},
		{
			ID:          "2",
			Email:       DemoUserEmail,
			Password:    DemoUserPassword,
			Role:        RoleUser,
			Groups:      []Group{demoTeam},
			AdminScopes: []string{},
		},
	}
}
