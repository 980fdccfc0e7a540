package rest

import (
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/frahmantamala/vortex-demo/api"
	"github.com/frahmantamala/vortex-demo/internal/auth"
	"github.com/frahmantamala/vortex-demo/internal/demo"
	"github.com/frahmantamala/vortex-demo/internal/transport"
	"github.com/frahmantamala/vortex-demo/internal/transport/middleware"
	"github.com/frahmantamala/vortex-demo/internal/transport/swagger"
	"github.com/frahmantamala/vortex-demo/internal/user"
	"github.com/frahmantamala/vortex-demo/internal/vortex"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth   *auth.Handler
	Gate   *auth.Gate
	Users  *user.Handler
	Demo   *demo.Handler
	Health *HealthHandler
	Vortex *vortex.Plugin
}

type Options struct {
	StaticDir string
	Logger    *slog.Logger
}

func NewRouter(h Handlers, opts Options) *chi.Mux {
	router := chi.NewRouter()
	RegisterAllRoutes(router, h, opts)
	return router
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	base := transport.NewBaseHandler(opts.Logger)

	// Apply global middleware
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID(base.Logger))
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware(base.Logger))

	router.NotFound(staticOrNotFound(opts.StaticDir, base.NotFound))
	router.MethodNotAllowed(base.MethodNotAllowed)

	router.Get(swagger.DocumentURL, serveDocument)
	router.Handle("/swagger/*", swagger.Handler(swagger.DocumentURL))

	if h.Health != nil {
		router.Get("/health", h.Health.Health)
		router.Get("/ping", h.Health.Ping)
	}

	router.Route("/api", func(r chi.Router) {
		if h.Auth != nil {
			r.Route("/auth", func(ar chi.Router) {
				ar.Post("/login", h.Auth.Login)
				ar.Post("/logout", h.Auth.Logout)
				ar.Get("/me", h.Auth.Me)
			})
		}

		r.Route("/demo", func(dr chi.Router) {
			if h.Users != nil {
				dr.Get("/users", h.Users.ListUsers)
			}

			// Protected routes that require a session
			if h.Gate != nil && h.Demo != nil {
				dr.Group(func(pr chi.Router) {
					pr.Use(h.Gate.RequireAuth)
					pr.Use(middleware.UserLogContext)
					pr.Get("/protected", h.Demo.Protected)
				})
			}
		})
	})

	if h.Vortex != nil {
		h.Vortex.Mount(router)
	}
}

func serveDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(api.Document())
}

// staticOrNotFound serves files from dir for GET/HEAD requests outside /api
// and falls back to the JSON 404.
func staticOrNotFound(dir string, notFound http.HandlerFunc) http.HandlerFunc {
	if dir == "" {
		return notFound
	}

	root := http.Dir(dir)
	files := http.FileServer(root)
	return func(w http.ResponseWriter, r *http.Request) {
		if (r.Method == http.MethodGet || r.Method == http.MethodHead) && !strings.HasPrefix(r.URL.Path, "/api/") {
			if exists(root, r.URL.Path) {
				files.ServeHTTP(w, r)
				return
			}
		}
		notFound(w, r)
	}
}

func exists(root http.Dir, name string) bool {
	f, err := root.Open(path.Clean("/" + name))
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}

	index, err := root.Open(path.Join(path.Clean("/"+name), "index.html"))
	if err != nil {
		return false
	}
	index.Close()
	return true
}
