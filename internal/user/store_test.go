package user_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frahmantamala/vortex-demo/internal/transport"
	"github.com/frahmantamala/vortex-demo/internal/user"
	"github.com/frahmantamala/vortex-demo/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Credential Store Suite")
}

var _ = Describe("Store", func() {
	var store *user.Store

	BeforeEach(func() {
		var err error
		store, err = user.NewStore(user.DemoSeeds(), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Authenticate", func() {
		It("should return the user for valid credentials", func() {
			u, ok := store.Authenticate(user.DemoAdminEmail, user.DemoAdminPassword)
			Expect(ok).To(BeTrue())
			Expect(u.ID).To(Equal("1"))
			Expect(u.Role).To(Equal(user.RoleAdmin))
			Expect(u.HasAdminScope(user.ScopeAutojoin)).To(BeTrue())
		})

		It("should not leak which part was wrong", func() {
			unknownUser, unknownOK := store.Authenticate("nobody@example.com", user.DemoAdminPassword)
			wrongPass, wrongOK := store.Authenticate(user.DemoAdminEmail, "wrong")

			Expect(unknownOK).To(BeFalse())
			Expect(wrongOK).To(BeFalse())
			Expect(unknownUser).To(BeNil())
			Expect(wrongPass).To(BeNil())
		})

		It("should match emails case-sensitively", func() {
			_, ok := store.Authenticate("ADMIN@example.com", user.DemoAdminPassword)
			Expect(ok).To(BeFalse())
		})

		It("should hand out copies", func() {
			u, ok := store.Authenticate(user.DemoAdminEmail, user.DemoAdminPassword)
			Expect(ok).To(BeTrue())
			u.AdminScopes[0] = "tampered"

			again, _ := store.Authenticate(user.DemoAdminEmail, user.DemoAdminPassword)
			Expect(again.AdminScopes).To(Equal([]string{user.ScopeAutojoin}))
		})
	})

	Describe("ListUsers", func() {
		It("should return every user in seed order", func() {
			users := store.ListUsers()
			Expect(users).To(HaveLen(2))
			Expect(users[0].Email).To(Equal(user.DemoAdminEmail))
			Expect(users[1].Email).To(Equal(user.DemoUserEmail))
			Expect(users[1].AdminScopes).To(BeEmpty())
		})

		It("should never serialize the password hash", func() {
			u, _ := store.FindByID("1")
			Expect(u.PasswordHash).NotTo(BeEmpty())

			raw, err := json.Marshal(u)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).NotTo(ContainSubstring("$2a$"))
			Expect(string(raw)).NotTo(ContainSubstring("password"))
		})
	})

	Describe("NewStore", func() {
		It("should reject duplicate emails", func() {
			seeds := append(user.DemoSeeds(), user.Seed{ID: "3", Email: user.DemoAdminEmail, Password: "x"})
			_, err := user.NewStore(seeds, bcrypt.MinCost)
			Expect(err).To(MatchError(user.ErrDuplicateUser))
		})

		It("should reject duplicate ids", func() {
			seeds := append(user.DemoSeeds(), user.Seed{ID: "1", Email: "new@example.com", Password: "x"})
			_, err := user.NewStore(seeds, bcrypt.MinCost)
			Expect(err).To(MatchError(user.ErrDuplicateUser))
		})

		It("should reject empty passwords", func() {
			_, err := user.NewStore([]user.Seed{{ID: "9", Email: "e@example.com"}}, bcrypt.MinCost)
			Expect(err).To(MatchError(user.ErrEmptyPassword))
		})

		It("should reject seeds without identity", func() {
			_, err := user.NewStore([]user.Seed{{Password: "x"}}, bcrypt.MinCost)
			Expect(err).To(MatchError(user.ErrInvalidSeed))
		})
	})
})

var _ = Describe("Passwords", func() {
	It("should verify a hash it produced", func() {
		hash, err := user.HashPassword("secret", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		Expect(user.VerifyPassword(hash, "secret")).To(Succeed())
		Expect(user.VerifyPassword(hash, "Secret")).To(MatchError(user.ErrPasswordMismatch))
	})
})

var _ = Describe("Handler", func() {
	It("should list demo users on GET /api/demo/users", func() {
		store, err := user.NewStore(user.DemoSeeds(), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		handler := user.NewHandler(transport.NewBaseHandler(logger.Discard()), store)

		req := httptest.NewRequest(http.MethodGet, "/api/demo/users", nil)
		w := httptest.NewRecorder()
		handler.ListUsers(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).NotTo(ContainSubstring("passwordHash"))

		var resp user.UsersResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Users).To(HaveLen(2))
		Expect(resp.Users[0].Groups).To(ConsistOf(user.Group{Type: "team", ID: "team-1", Name: "Engineering"}))
	})
})
