package demo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frahmantamala/vortex-demo/internal/demo"
	"github.com/frahmantamala/vortex-demo/internal/session"
	"github.com/frahmantamala/vortex-demo/internal/transport"
	"github.com/frahmantamala/vortex-demo/internal/user"
	"github.com/frahmantamala/vortex-demo/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDemo(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Demo Handler Suite")
}

var _ = Describe("Protected", func() {
	var handler *demo.Handler

	BeforeEach(func() {
		handler = demo.NewHandler(transport.NewBaseHandler(logger.Discard()))
	})

	It("returns the message, the session user and a timestamp", func() {
		claims := &session.Claims{
			UserID: "1",
			Email:  "admin@example.com",
			Role:   user.RoleAdmin,
			Groups: []user.Group{{Type: "team", ID: "team-1", Name: "Engineering"}},
		}
		req := httptest.NewRequest(http.MethodGet, "/api/demo/protected", nil)
		req = req.WithContext(session.NewContext(req.Context(), claims))
		rr := httptest.NewRecorder()

		handler.Protected(rr, req)

		Expect(rr.Code).To(Equal(http.StatusOK))
		var resp demo.ProtectedResponse
		Expect(json.Unmarshal(rr.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Message).To(Equal(demo.ProtectedMessage))
		Expect(resp.User.ID).To(Equal("1"))
		Expect(resp.User.Role).To(Equal(user.RoleAdmin))

		ts, err := time.Parse(time.RFC3339, resp.Timestamp)
		Expect(err).NotTo(HaveOccurred())
		Expect(ts).To(BeTemporally("~", time.Now(), 5*time.Second))
	})

	It("refuses requests that bypassed the gate", func() {
		rr := httptest.NewRecorder()
		handler.Protected(rr, httptest.NewRequest(http.MethodGet, "/api/demo/protected", nil))
		Expect(rr.Code).To(Equal(http.StatusUnauthorized))
	})
})
