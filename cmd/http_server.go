package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/vortex-demo/api"
	"github.com/frahmantamala/vortex-demo/internal"
	"github.com/frahmantamala/vortex-demo/internal/auth"
	"github.com/frahmantamala/vortex-demo/internal/core/events"
	"github.com/frahmantamala/vortex-demo/internal/database"
	"github.com/frahmantamala/vortex-demo/internal/demo"
	"github.com/frahmantamala/vortex-demo/internal/session"
	"github.com/frahmantamala/vortex-demo/internal/transport"
	"github.com/frahmantamala/vortex-demo/internal/transport/rest"
	"github.com/frahmantamala/vortex-demo/internal/user"
	"github.com/frahmantamala/vortex-demo/internal/vortex"
	vortexPostgres "github.com/frahmantamala/vortex-demo/internal/vortex/postgres"
	"github.com/frahmantamala/vortex-demo/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server serving the auth, demo and vortex routes`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Events *events.EventBus
	Plugin *vortex.Plugin
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	ctx := context.Background()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		lg.Info("Starting HTTP server",
			"address", addr,
			"env", deps.Config.App.Env,
			"vortex_base_path", deps.Plugin.BasePath())
		serverErrChan <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(ctx, deps.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
		if err := deps.Events.Wait(shutdownCtx); err != nil {
			lg.Warn("Event handlers still running at shutdown", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("Server failed to start", "error", err)
			exitCode = 1
		}
	}

	if err := deps.DB.Close(); err != nil {
		lg.Error("Database close error", "error", err)
	}

	lg.Info("Server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func initLogger(cfg *internal.Config) *slog.Logger {
	logger.InitWithOptions(logger.Options{
		Env:    cfg.App.Env,
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	return logger.LoggerWrapper().With("app", cfg.App.Name)
}

// resolveSecrets picks the session and cookie secrets, warning loudly when
// the public demo fallbacks are in use.
func resolveSecrets(cfg *internal.Config, lg *slog.Logger) (string, string, error) {
	sessionSecret, insecure, err := session.ResolveSecret(cfg.Security.SessionSecret, session.InsecureSessionSecret, cfg.App.Env)
	if err != nil {
		return "", "", err
	}
	if insecure {
		lg.Warn("SESSION_SECRET is not set, using the insecure demo secret; never run this in production")
	}

	cookieSecret, insecure, err := session.ResolveSecret(cfg.Security.CookieSecret, auth.InsecureCookieSecret, cfg.App.Env)
	if err != nil {
		return "", "", fmt.Errorf("cookie secret: %w", err)
	}
	if insecure {
		lg.Warn("COOKIE_SECRET is not set, using the insecure demo secret; never run this in production")
	}

	return sessionSecret, cookieSecret, nil
}

func openDatabase(ctx context.Context, cfg *internal.Config, lg *slog.Logger) (*sqlx.DB, *gorm.DB, error) {
	conn, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, conn, cfg.Database.Driver)
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		if len(applied) > 0 {
			lg.Info("applied migrations", "versions", applied)
		}
	}

	gdb, err := database.Gorm(conn, cfg.Database.Driver, lg)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}
	return conn, gdb, nil
}

// newEventBus returns a bus that logs every invitation event.
func newEventBus(lg *slog.Logger) *events.EventBus {
	bus := events.NewEventBus(lg.With("component", "events"))
	logEvent := func(ctx context.Context, event events.Event) error {
		ev, ok := event.(*events.InvitationEvent)
		if !ok {
			return nil
		}
		lg.Info("invitation event",
			"event_type", ev.EventType(),
			"event_id", ev.EventID(),
			"invitation_id", ev.InvitationID,
			"actor_id", ev.ActorID,
			"group_type", ev.GroupType,
			"group_id", ev.GroupID,
			"status", ev.Status)
		return nil
	}
	for _, eventType := range events.InvitationEventTypes {
		bus.Subscribe(eventType, logEvent)
	}
	return bus
}

func newVortexPlugin(cfg *internal.Config, gdb *gorm.DB, bus *events.EventBus, authenticate vortex.AuthenticateUserFunc, lg *slog.Logger) (*vortex.Plugin, error) {
	return vortex.New(vortex.Config{
		APIKey:           cfg.Vortex.APIKey,
		BasePath:         cfg.Vortex.BasePath,
		JWTTTL:           cfg.Vortex.JWTTTL,
		AuthCallbackURL:  cfg.Vortex.AuthCallbackURL,
		AuthenticateUser: authenticate,
		Policy:           vortex.AllowAll{},
		Repository:       vortexPostgres.NewInvitationRepository(gdb),
		Events:           bus,
		Logger:           lg.With("component", "vortex"),
	})
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := initLogger(config)

	if _, err := api.Load(); err != nil {
		return nil, err
	}

	sessionSecret, cookieSecret, err := resolveSecrets(config, lg)
	if err != nil {
		return nil, err
	}

	store, err := user.NewStore(user.DemoSeeds(), config.Security.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to build credential store: %w", err)
	}

	codec, err := session.NewCodec(sessionSecret, session.WithTTL(config.Security.SessionTTL))
	if err != nil {
		return nil, err
	}
	jar := auth.NewCookieJar(cookieSecret, config.IsProduction(), codec.TTL())

	base := transport.NewBaseHandler(lg)
	gate := auth.NewGate(base, codec, jar)

	conn, gdb, err := openDatabase(ctx, config, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus := newEventBus(lg)
	plugin, err := newVortexPlugin(config, gdb, bus, gate.AuthenticateVortexUser, lg)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize vortex plugin: %w", err)
	}

	router := rest.NewRouter(rest.Handlers{
		Auth:  auth.NewHandler(base, store, codec, jar, gate),
		Gate:  gate,
		Users: user.NewHandler(base, store),
		Demo:  demo.NewHandler(base),
		Health: rest.NewHealthHandler(base, conn, config.Database.Driver, rest.PluginInfo{
			Name:     "vortex",
			BasePath: plugin.BasePath(),
			Routes:   plugin.Routes(),
		}),
		Vortex: plugin,
	}, rest.Options{StaticDir: config.Server.StaticDir, Logger: lg})

	return &Dependencies{
		Config: config,
		DB:     conn,
		Gorm:   gdb,
		Events: bus,
		Plugin: plugin,
		Router: router,
		Logger: lg,
	}, nil
}
