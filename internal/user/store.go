package user

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateUser = errors.New("duplicate user")
	ErrInvalidSeed   = errors.New("invalid user seed")
)

// Seed is a plaintext user definition hashed once by NewStore.
type Seed struct {
	ID          string
	Email       string
	Password    string
	Role        Role
	Groups      []Group
	AdminScopes []string
}

// Store is the read-only credential store. It is built once at startup and
// never mutated, so it is safe for concurrent use without locking.
type Store struct {
	users     []*User
	byEmail   map[string]*User
	byID      map[string]*User
	dummyHash string
}

// NewStore hashes every seed password with the given bcrypt cost.
func NewStore(seeds []Seed, cost int) (*Store, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	s := &Store{
		users:   make([]*User, 0, len(seeds)),
		byEmail: make(map[string]*User, len(seeds)),
		byID:    make(map[string]*User, len(seeds)),
	}

	for _, seed := range seeds {
		if seed.ID == "" || seed.Email == "" {
			return nil, fmt.Errorf("%w: id and email are required", ErrInvalidSeed)
		}
		if _, exists := s.byID[seed.ID]; exists {
			return nil, fmt.Errorf("%w: id %s", ErrDuplicateUser, seed.ID)
		}
		if _, exists := s.byEmail[seed.Email]; exists {
			return nil, fmt.Errorf("%w: email %s", ErrDuplicateUser, seed.Email)
		}

		hash, err := HashPassword(seed.Password, cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", seed.Email, err)
		}

		u := &User{
			ID:           seed.ID,
			Email:        seed.Email,
			PasswordHash: hash,
			Role:         seed.Role,
			Groups:       cloneGroups(seed.Groups),
			AdminScopes:  cloneScopes(seed.AdminScopes),
		}
		s.users = append(s.users, u)
		s.byEmail[u.Email] = u
		s.byID[u.ID] = u
	}

	// unknown emails are compared against this so lookups cost the same
	dummy, err := HashPassword("unknown-user-placeholder", cost)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}
	s.dummyHash = dummy

	slog.Debug("credential store initialized", "users", len(s.users))

	return s, nil
}

// Authenticate returns the user iff the email exists and the password
// matches. Both failure causes produce the same (nil, false) result.
func (s *Store) Authenticate(email, password string) (*User, bool) {
	u, exists := s.byEmail[email]
	if !exists {
		_ = VerifyPassword(s.dummyHash, password)
		return nil, false
	}

	if err := VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, false
	}

	return u.clone(), true
}

// ListUsers returns every user in seed order without password hashes.
func (s *Store) ListUsers() []PublicUser {
	out := make([]PublicUser, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Public())
	}
	return out
}

func (s *Store) FindByID(id string) (*User, bool) {
	u, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return u.clone(), true
}

func (s *Store) Len() int {
	return len(s.users)
}
