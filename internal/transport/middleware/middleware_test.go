package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/vortex-demo/internal/session"
	"github.com/frahmantamala/vortex-demo/pkg/logger"
	"github.com/go-chi/chi/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var _ = Describe("RequestID", func() {
	It("generates an id, echoes it and exposes it to handlers", func() {
		var seen string
		h := RequestID(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = middleware.GetReqID(r.Context())
		}))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(seen).NotTo(BeEmpty())
		Expect(rr.Header().Get(RequestIDHeader)).To(Equal(seen))
	})

	It("keeps the caller's id and tags the context logger", func() {
		var buf bytes.Buffer
		h := RequestID(bufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.From(r.Context()).Info("inside")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		Expect(rr.Header().Get(RequestIDHeader)).To(Equal("abc-123"))
		Expect(buf.String()).To(ContainSubstring(`"request_id":"abc-123"`))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("returns the generic 500 envelope without panic details", func() {
		var buf bytes.Buffer
		h := RecoveryMiddleware(bufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("database password is hunter2")
		}))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))

		Expect(rr.Code).To(Equal(http.StatusInternalServerError))
		Expect(rr.Body.String()).To(MatchJSON(`{"error":{"type":"INTERNAL_ERROR","code":"INTERNAL_ERROR","message":"Internal server error"}}`))
		Expect(rr.Body.String()).NotTo(ContainSubstring("hunter2"))
	})
})

var _ = Describe("UserLogContext", func() {
	It("adds the session user to the context logger", func() {
		var buf bytes.Buffer
		ctx := logger.Into(httptest.NewRequest(http.MethodGet, "/", nil).Context(), bufferLogger(&buf))
		ctx = session.NewContext(ctx, &session.Claims{UserID: "42"})

		h := UserLogContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.From(r.Context()).Info("inside")
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))

		Expect(buf.String()).To(ContainSubstring(`"user_id":"42"`))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("filters credentials from logged bodies and headers", func() {
		var buf bytes.Buffer
		h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@example.com","password":"hunter2"}`))
		req.Header.Set("Cookie", "session=s:abc.def")
		req = req.WithContext(logger.Into(req.Context(), bufferLogger(&buf)))
		h.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		Expect(out).NotTo(ContainSubstring("hunter2"))
		Expect(out).NotTo(ContainSubstring("s:abc.def"))
		Expect(out).To(ContainSubstring(`"status_code":401`))
	})

	It("leaves the request body readable for the handler", func() {
		var got map[string]string
		h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(json.NewDecoder(r.Body).Decode(&got)).To(Succeed())
		}))

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@example.com"}`))
		req = req.WithContext(logger.Into(req.Context(), logger.Discard()))
		h.ServeHTTP(httptest.NewRecorder(), req)
		Expect(got).To(HaveKeyWithValue("email", "a@example.com"))
	})

	It("masks nested sensitive JSON keys", func() {
		out := redactBody([]byte(`{"user":{"email":"a@example.com","passwordHash":"x"},"jwt":"t","invitations":[{"sessionId":"s"}]}`))
		Expect(out).To(ContainSubstring(`"email":"a@example.com"`))
		Expect(out).NotTo(ContainSubstring(`"x"`))
		Expect(out).NotTo(ContainSubstring(`"t"`))
		Expect(out).NotTo(ContainSubstring(`"s"`))
	})

	It("summarises bodies that are not JSON", func() {
		Expect(redactBody([]byte("password=hunter2"))).To(Equal("[16 bytes, not logged]"))
		Expect(redactBody(nil)).To(BeEmpty())
	})

	It("masks session and authorization headers", func() {
		h := http.Header{}
		h.Set("Cookie", "session=s:abc.def")
		h.Set("Set-Cookie", "session=s:abc.def")
		h.Set("Authorization", "Bearer x")
		h.Set("Content-Type", "application/json")

		out := redactHeaders(h)
		Expect(out).To(HaveKeyWithValue("Cookie", redacted))
		Expect(out).To(HaveKeyWithValue("Set-Cookie", redacted))
		Expect(out).To(HaveKeyWithValue("Authorization", redacted))
		Expect(out).To(HaveKeyWithValue("Content-Type", "application/json"))
	})

	It("logs the response status and size", func() {
		var buf bytes.Buffer
		h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req = req.WithContext(logger.Into(req.Context(), bufferLogger(&buf)))
		h.ServeHTTP(httptest.NewRecorder(), req)

		Expect(buf.String()).To(ContainSubstring(`"status_code":200`))
		Expect(buf.String()).To(ContainSubstring(`"response_size":11`))
	})
})
