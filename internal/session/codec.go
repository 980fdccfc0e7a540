package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/vortex-demo/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultTTL    = 24 * time.Hour
	DefaultIssuer = "vortex-demo"

	// InsecureSessionSecret is only ever used outside production, and a
	// warning is logged whenever it is.
	InsecureSessionSecret = "vortex-demo-insecure-session-secret-do-not-use"
)

var ErrMissingSecret = errors.New("session secret is not configured")

// Claims is the identity carried inside a session token. It mirrors the
// public fields of user.User at signing time.
type Claims struct {
	UserID      string       `json:"userId"`
	Email       string       `json:"email"`
	Role        user.Role    `json:"role"`
	Groups      []user.Group `json:"groups"`
	AdminScopes []string     `json:"adminScopes"`
	jwt.RegisteredClaims
}

// ClaimsFromUser copies the public fields of u.
func ClaimsFromUser(u *user.User) Claims {
	pub := u.Public()
	return Claims{
		UserID:      pub.ID,
		Email:       pub.Email,
		Role:        pub.Role,
		Groups:      pub.Groups,
		AdminScopes: pub.AdminScopes,
	}
}

// User returns the public user view of the claims.
func (c *Claims) User() user.PublicUser {
	groups := c.Groups
	if groups == nil {
		groups = []user.Group{}
	}
	scopes := c.AdminScopes
	if scopes == nil {
		scopes = []string{}
	}
	return user.PublicUser{
		ID:          c.UserID,
		Email:       c.Email,
		Role:        c.Role,
		Groups:      groups,
		AdminScopes: scopes,
	}
}

type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type Option func(*Codec)

func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithIssuer(issuer string) Option {
	return func(c *Codec) {
		c.issuer = issuer
	}
}

// WithClock overrides time.Now for signing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	c := &Codec{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Sign embeds claims in an HS256 token that expires TTL from now.
func (c *Codec) Sign(claims Claims) (string, error) {
	now := c.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify decodes a token. Bad signatures, foreign algorithms, malformed
// input and expired tokens all yield (nil, false).
func (c *Codec) Verify(tokenString string) (*Claims, bool) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, false
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, parserOpts...)
	if err != nil || !token.Valid {
		return nil, false
	}
	if claims.UserID == "" {
		return nil, false
	}
	return claims, true
}

// ResolveSecret returns the configured secret. When it is empty, production
// fails with ErrMissingSecret and every other environment gets fallback
// together with insecure=true.
func ResolveSecret(configured, fallback, env string) (secret string, insecure bool, err error) {
	if configured != "" {
		return configured, false, nil
	}
	if strings.EqualFold(env, "production") {
		return "", false, ErrMissingSecret
	}
	return fallback, true, nil
}
