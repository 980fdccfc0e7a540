package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/vortex-demo/internal/auth"
	"github.com/frahmantamala/vortex-demo/internal/session"
	"github.com/frahmantamala/vortex-demo/internal/transport"
	"github.com/frahmantamala/vortex-demo/internal/user"
	"github.com/frahmantamala/vortex-demo/internal/vortex"
	"github.com/frahmantamala/vortex-demo/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Gate Suite")
}

const (
	sessionSecret = "test-session-secret-that-is-long-enough"
	cookieSecret  = "test-cookie-secret-that-is-long-enough!"
)

var (
	store *user.Store
	codec *session.Codec
	jar   *auth.CookieJar
	gate  *auth.Gate
	base  *transport.BaseHandler
)

var _ = BeforeSuite(func() {
	var err error
	store, err = user.NewStore(user.DemoSeeds(), bcrypt.MinCost)
	Expect(err).NotTo(HaveOccurred())
})

var _ = BeforeEach(func() {
	var err error
	codec, err = session.NewCodec(sessionSecret)
	Expect(err).NotTo(HaveOccurred())
	jar = auth.NewCookieJar(cookieSecret, false, session.DefaultTTL)
	base = transport.NewBaseHandler(logger.Discard())
	gate = auth.NewGate(base, codec, jar)
})

func sessionCookieFor(c *session.Codec, u *user.User) *http.Cookie {
	token, err := c.Sign(session.ClaimsFromUser(u))
	Expect(err).NotTo(HaveOccurred())

	rr := httptest.NewRecorder()
	jar.Set(rr, token)
	cookies := rr.Result().Cookies()
	Expect(cookies).To(HaveLen(1))
	return cookies[0]
}

func demoAdmin() *user.User {
	u, ok := store.Authenticate(user.DemoAdminEmail, user.DemoAdminPassword)
	Expect(ok).To(BeTrue())
	return u
}

var _ = Describe("CookieJar", func() {
	It("writes an http-only lax cookie named session", func() {
		rr := httptest.NewRecorder()
		jar.Set(rr, "token-value")

		c := rr.Result().Cookies()[0]
		Expect(c.Name).To(Equal(auth.SessionCookieName))
		Expect(c.HttpOnly).To(BeTrue())
		Expect(c.SameSite).To(Equal(http.SameSiteLaxMode))
		Expect(c.Path).To(Equal("/"))
		Expect(c.MaxAge).To(Equal(int((24 * time.Hour).Seconds())))
		Expect(c.Secure).To(BeFalse())
		Expect(c.Value).To(HavePrefix("s:token-value."))
	})

	It("marks the cookie secure when asked to", func() {
		rr := httptest.NewRecorder()
		auth.NewCookieJar(cookieSecret, true, time.Hour).Set(rr, "v")
		Expect(rr.Result().Cookies()[0].Secure).To(BeTrue())
	})

	It("reads back what it wrote", func() {
		rr := httptest.NewRecorder()
		jar.Set(rr, "token-value")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(rr.Result().Cookies()[0])
		Expect(jar.Read(req)).To(Equal("token-value"))
	})

	It("ignores cookies signed with another secret or not signed at all", func() {
		rr := httptest.NewRecorder()
		auth.NewCookieJar("some-other-cookie-secret-value-here!!", false, time.Hour).Set(rr, "token-value")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(rr.Result().Cookies()[0])
		Expect(jar.Read(req)).To(BeEmpty())

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "token-value"})
		Expect(jar.Read(req)).To(BeEmpty())
	})

	It("expires the cookie on Clear", func() {
		rr := httptest.NewRecorder()
		jar.Clear(rr)
		c := rr.Result().Cookies()[0]
		Expect(c.Name).To(Equal(auth.SessionCookieName))
		Expect(c.Value).To(BeEmpty())
		Expect(c.MaxAge).To(BeNumerically("<", 0))
	})
})

var _ = Describe("Gate", func() {
	var (
		protected http.Handler
		reached   bool
		seen      *session.Claims
	)

	BeforeEach(func() {
		reached = false
		seen = nil
		protected = gate.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			seen, _ = session.FromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))
	})

	serve := func(cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/demo/protected", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		return rr
	}

	It("passes a valid session through with the claims attached", func() {
		rr := serve(sessionCookieFor(codec, demoAdmin()))
		Expect(rr.Code).To(Equal(http.StatusNoContent))
		Expect(reached).To(BeTrue())
		Expect(seen).NotTo(BeNil())
		Expect(seen.UserID).To(Equal("1"))
		Expect(seen.Role).To(Equal(user.RoleAdmin))
	})

	It("rejects a request without a cookie", func() {
		rr := serve(nil)
		Expect(rr.Code).To(Equal(http.StatusUnauthorized))
		Expect(reached).To(BeFalse())
		Expect(rr.Body.String()).To(MatchJSON(`{"error":{"type":"UNAUTHORIZED","code":"AUTHENTICATION_REQUIRED","message":"Authentication required"}}`))
	})

	It("rejects a malformed cookie", func() {
		rr := serve(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})
		Expect(rr.Code).To(Equal(http.StatusUnauthorized))
		Expect(reached).To(BeFalse())
	})

	It("rejects a correctly signed cookie holding a malformed token", func() {
		rr := httptest.NewRecorder()
		jar.Set(rr, "not.a.jwt")
		Expect(serve(rr.Result().Cookies()[0]).Code).To(Equal(http.StatusUnauthorized))
		Expect(reached).To(BeFalse())
	})

	It("rejects an expired session", func() {
		past, err := session.NewCodec(sessionSecret, session.WithClock(func() time.Time {
			return time.Now().Add(-48 * time.Hour)
		}))
		Expect(err).NotTo(HaveOccurred())

		rr := serve(sessionCookieFor(past, demoAdmin()))
		Expect(rr.Code).To(Equal(http.StatusUnauthorized))
		Expect(reached).To(BeFalse())
	})

	It("rejects a token signed with another session secret", func() {
		other, err := session.NewCodec("another-session-secret-of-enough-length")
		Expect(err).NotTo(HaveOccurred())
		Expect(serve(sessionCookieFor(other, demoAdmin())).Code).To(Equal(http.StatusUnauthorized))
	})

	Describe("AuthenticateVortexUser", func() {
		It("yields no identity for anonymous requests", func() {
			who, err := gate.AuthenticateVortexUser(httptest.NewRequest(http.MethodPost, "/api/vortex/jwt", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(who).To(BeNil())
		})

		It("maps the session user onto the plugin identity", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/vortex/jwt", nil)
			req.AddCookie(sessionCookieFor(codec, demoAdmin()))

			who, err := gate.AuthenticateVortexUser(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(who).NotTo(BeNil())
			Expect(who.UserID).To(Equal("1"))
			Expect(who.Identifiers).To(Equal([]vortex.Identifier{{Type: vortex.IdentifierEmail, Value: user.DemoAdminEmail}}))
			Expect(who.Groups).To(Equal([]vortex.Group{{Type: "team", ID: "team-1", Name: "Engineering"}}))
			Expect(who.AdminScopes).To(Equal([]string{user.ScopeAutojoin}))
		})
	})

	It("maps nil claims to a nil identity", func() {
		Expect(auth.VortexIdentity(nil)).To(BeNil())
	})
})

var _ = Describe("Handler", func() {
	var handler *auth.Handler

	BeforeEach(func() {
		handler = auth.NewHandler(base, store, codec, jar, gate)
	})

	post := func(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		h(rr, req)
		return rr
	}

	loginBody := func(email, password string) string {
		b, _ := json.Marshal(auth.LoginDTO{Email: email, Password: password})
		return string(b)
	}

	Describe("Login", func() {
		It("sets the session cookie and returns the public user", func() {
			rr := post(handler.Login, loginBody(user.DemoAdminEmail, user.DemoAdminPassword))
			Expect(rr.Code).To(Equal(http.StatusOK))

			var resp auth.LoginResponse
			Expect(json.Unmarshal(rr.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Success).To(BeTrue())
			Expect(resp.User.Email).To(Equal(user.DemoAdminEmail))
			Expect(resp.User.Role).To(Equal(user.RoleAdmin))
			Expect(rr.Body.String()).NotTo(ContainSubstring("password"))

			cookies := rr.Result().Cookies()
			Expect(cookies).To(HaveLen(1))
			Expect(cookies[0].Name).To(Equal("session"))
			Expect(cookies[0].HttpOnly).To(BeTrue())
		})

		It("answers unknown email and wrong password identically", func() {
			wrong := post(handler.Login, loginBody(user.DemoAdminEmail, "wrong"))
			unknown := post(handler.Login, loginBody("nobody@example.com", user.DemoAdminPassword))

			Expect(wrong.Code).To(Equal(http.StatusUnauthorized))
			Expect(unknown.Code).To(Equal(http.StatusUnauthorized))
			Expect(wrong.Body.String()).To(Equal(unknown.Body.String()))
			Expect(wrong.Result().Cookies()).To(BeEmpty())
			Expect(unknown.Result().Cookies()).To(BeEmpty())
		})

		It("returns 400 when a field is missing", func() {
			rr := post(handler.Login, `{"email":"admin@example.com"}`)
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			Expect(rr.Body.String()).To(ContainSubstring("password is required"))
			Expect(rr.Result().Cookies()).To(BeEmpty())
		})

		It("returns 400 for a body that is not JSON", func() {
			rr := post(handler.Login, `email=admin`)
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Logout", func() {
		It("clears the cookie even without a session", func() {
			rr := post(handler.Logout, "")
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(MatchJSON(`{"success":true}`))
			cookies := rr.Result().Cookies()
			Expect(cookies).To(HaveLen(1))
			Expect(cookies[0].MaxAge).To(BeNumerically("<", 0))
		})
	})

	Describe("Me", func() {
		It("returns the session user", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			req.AddCookie(sessionCookieFor(codec, demoAdmin()))
			rr := httptest.NewRecorder()
			handler.Me(rr, req)

			Expect(rr.Code).To(Equal(http.StatusOK))
			var resp auth.MeResponse
			Expect(json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&resp)).To(Succeed())
			Expect(resp.User.ID).To(Equal("1"))
			Expect(resp.User.AdminScopes).To(ConsistOf(user.ScopeAutojoin))
		})

		It("returns 401 without a session", func() {
			rr := httptest.NewRecorder()
			handler.Me(rr, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
			Expect(rr.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
