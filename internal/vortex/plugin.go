package vortex

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/vortex-demo/internal"
	"github.com/frahmantamala/vortex-demo/internal/core/events"
	"github.com/frahmantamala/vortex-demo/internal/transport"
	"github.com/go-chi/chi"
)

const DefaultBasePath = "/api/vortex"

var (
	ErrMissingAPIKey        = errors.New("vortex: api key is required")
	ErrMissingAuthenticator = errors.New("vortex: authenticateUser callback is required")
	ErrMissingPolicy        = errors.New("vortex: access control policy is required")
	ErrMissingRepository    = errors.New("vortex: invitation repository is required")
)

type Config struct {
	APIKey           string
	BasePath         string
	JWTTTL           time.Duration
	AuthCallbackURL  string
	AuthenticateUser AuthenticateUserFunc
	Policy           Policy
	Repository       RepositoryAPI
	Events           events.Bus
	Logger           *slog.Logger
}

type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Plugin is the mountable invitation/JWT surface.
type Plugin struct {
	basePath     string
	authenticate AuthenticateUserFunc
	handler      *Handler
	base         *transport.BaseHandler
	routes       []route
}

type route struct {
	method  string
	pattern string
	handle  http.HandlerFunc
}

func New(cfg Config) (*Plugin, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.AuthenticateUser == nil {
		return nil, ErrMissingAuthenticator
	}
	if cfg.Policy == nil {
		return nil, ErrMissingPolicy
	}
	if cfg.Repository == nil {
		return nil, ErrMissingRepository
	}

	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}

	minter, err := NewMinter(cfg.APIKey, cfg.JWTTTL, cfg.AuthCallbackURL)
	if err != nil {
		return nil, err
	}

	base := transport.NewBaseHandler(cfg.Logger)
	lg := base.Logger.With("component", "vortex")

	service := NewService(cfg.Repository, cfg.Events, lg)
	handler := NewHandler(transport.NewBaseHandler(lg), service, cfg.Policy, minter)

	p := &Plugin{
		basePath:     basePath,
		authenticate: cfg.AuthenticateUser,
		handler:      handler,
		base:         base,
	}
	p.routes = []route{
		{http.MethodPost, "/jwt", handler.MintJWT},
		{http.MethodGet, "/invitations", handler.ListByTarget},
		{http.MethodPost, "/invitations", handler.Create},
		{http.MethodPost, "/invitations/accept", handler.Accept},
		{http.MethodGet, "/invitations/by-group/{groupType}/{groupId}", handler.ListByGroup},
		{http.MethodDelete, "/invitations/by-group/{groupType}/{groupId}", handler.RevokeGroup},
		{http.MethodGet, "/invitations/{id}", handler.Get},
		{http.MethodDelete, "/invitations/{id}", handler.Revoke},
		{http.MethodPost, "/invitations/{id}/reinvite", handler.Reinvite},
	}

	return p, nil
}

func (p *Plugin) BasePath() string {
	return p.basePath
}

func (p *Plugin) Service() *Service {
	return p.handler.Service
}

// Routes lists the mounted routes with their full paths.
func (p *Plugin) Routes() []Route {
	out := make([]Route, 0, len(p.routes))
	for _, rt := range p.routes {
		out = append(out, Route{Method: rt.method, Path: p.basePath + rt.pattern})
	}
	return out
}

// Handler returns the plugin router with paths relative to the base path.
func (p *Plugin) Handler() http.Handler {
	r := chi.NewRouter()
	r.NotFound(p.base.NotFound)
	r.MethodNotAllowed(p.base.MethodNotAllowed)
	r.Group(func(r chi.Router) {
		r.Use(p.requireIdentity)
		for _, rt := range p.routes {
			r.MethodFunc(rt.method, rt.pattern, rt.handle)
		}
	})
	return r
}

func (p *Plugin) Mount(r chi.Router) {
	r.Mount(p.basePath, p.Handler())
}

// requireIdentity runs the host's authenticateUser callback. No identity
// means 401; a callback error is the host's failure and maps to 500.
func (p *Plugin) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		who, err := p.authenticate(r)
		if err != nil {
			p.base.WriteAppError(w, r, internal.NewInternalError("failed to authenticate user", err))
			return
		}
		if who == nil || who.UserID == "" {
			p.base.WriteAppError(w, r, internal.ErrAuthRequired)
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), who)))
	})
}
