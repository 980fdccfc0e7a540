package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const (
	SessionCookieName = "session"

	// InsecureCookieSecret is the non-production fallback for cookie signing.
	InsecureCookieSecret = "vortex-demo-insecure-cookie-secret-do-not-use"

	signedPrefix = "s:"
)

// CookieJar writes and reads the signed session cookie.
type CookieJar struct {
	Name   string
	Secure bool
	MaxAge time.Duration
	secret []byte
}

func NewCookieJar(secret string, secure bool, maxAge time.Duration) *CookieJar {
	return &CookieJar{
		Name:   SessionCookieName,
		Secure: secure,
		MaxAge: maxAge,
		secret: []byte(secret),
	}
}

// Set stores value as "s:<value>.<mac>" in an http-only, SameSite=Lax cookie.
func (j *CookieJar) Set(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     j.Name,
		Value:    j.sign(value),
		Path:     "/",
		MaxAge:   int(j.MaxAge.Seconds()),
		Expires:  time.Now().Add(j.MaxAge),
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the cookie on the client.
func (j *CookieJar) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     j.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the unsigned cookie value, or "" when the cookie is absent
// or its signature does not verify.
func (j *CookieJar) Read(r *http.Request) string {
	c, err := r.Cookie(j.Name)
	if err != nil || c.Value == "" {
		return ""
	}
	value, ok := j.unsign(c.Value)
	if !ok {
		return ""
	}
	return value
}

func (j *CookieJar) sign(value string) string {
	return signedPrefix + value + "." + j.mac(value)
}

func (j *CookieJar) unsign(raw string) (string, bool) {
	if !strings.HasPrefix(raw, signedPrefix) {
		return "", false
	}
	raw = strings.TrimPrefix(raw, signedPrefix)

	idx := strings.LastIndex(raw, ".")
	if idx <= 0 {
		return "", false
	}
	value, mac := raw[:idx], raw[idx+1:]
	if !hmac.Equal([]byte(mac), []byte(j.mac(value))) {
		return "", false
	}
	return value, true
}

func (j *CookieJar) mac(value string) string {
	h := hmac.New(sha256.New, j.secret)
	h.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
