package vortex

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultJWTTTL = time.Hour

// Claims is the payload of the widget JWT minted for an identity.
type Claims struct {
	UserID          string       `json:"userId"`
	Identifiers     []Identifier `json:"identifiers"`
	Groups          []Group      `json:"groups"`
	AdminScopes     []string     `json:"adminScopes"`
	AuthCallbackURL string       `json:"authCallbackUrl,omitempty"`
	jwt.RegisteredClaims
}

type Minter struct {
	key         []byte
	ttl         time.Duration
	callbackURL string
	now         func() time.Time
}

func NewMinter(apiKey string, ttl time.Duration, callbackURL string) (*Minter, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if ttl <= 0 {
		ttl = DefaultJWTTTL
	}
	return &Minter{
		key:         []byte(apiKey),
		ttl:         ttl,
		callbackURL: callbackURL,
		now:         time.Now,
	}, nil
}

// Mint signs an HS256 token for who with the API key.
func (m *Minter) Mint(who *Identity) (string, time.Time, error) {
	if who == nil || who.UserID == "" {
		return "", time.Time{}, errors.New("vortex: identity without user id")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		UserID:          who.UserID,
		Identifiers:     who.Identifiers,
		Groups:          who.Groups,
		AdminScopes:     who.AdminScopes,
		AuthCallbackURL: m.callbackURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   who.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies a token minted by m. Used by tests and by the widget
// backend when it calls back into the host.
func (m *Minter) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
