package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/vortex-demo/internal/transport"
	"github.com/frahmantamala/vortex-demo/internal/vortex"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"

	healthCheckTimeout = 2 * time.Second
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
	Plugins    []PluginInfo          `json:"plugins"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

type PluginInfo struct {
	Name     string         `json:"name"`
	BasePath string         `json:"base_path"`
	Routes   []vortex.Route `json:"routes"`
}

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	*transport.BaseHandler
	db      Pinger
	driver  string
	plugins []PluginInfo
	timeout time.Duration
}

func NewHealthHandler(baseHandler *transport.BaseHandler, db Pinger, driver string, plugins ...PluginInfo) *HealthHandler {
	return &HealthHandler{
		BaseHandler: baseHandler,
		db:          db,
		driver:      driver,
		plugins:     plugins,
		timeout:     healthCheckTimeout,
	}
}

// Ping only says the process is up.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Health checks the database and lists the mounted plugin routes.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     HealthHealthy,
		Components: map[string]CheckEntry{},
		Plugins:    h.plugins,
	}
	if resp.Plugins == nil {
		resp.Plugins = []PluginInfo{}
	}

	if h.db != nil {
		entry := h.checkDatabase(r.Context())
		resp.Components["database"] = entry
		if entry.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
		}
	}
	resp.CheckedAt = time.Now()

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	h.WriteJSON(w, statusCode, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckEntry {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)

	entry := CheckEntry{
		Status:     HealthHealthy,
		Details:    map[string]any{"driver": h.driver},
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		h.Logger.Error("database health check failed", "error", err)
		entry.Status = HealthUnhealthy
		entry.Message = "database unreachable"
	}
	return entry
}
