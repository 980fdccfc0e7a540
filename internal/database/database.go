package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/frahmantamala/vortex-demo/db"
	"github.com/frahmantamala/vortex-demo/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// SQLDriver maps a configured driver to its database/sql driver name.
// "sqlite3" is registered by go-sqlite3, which the gorm sqlite driver pulls in.
func SQLDriver(driver string) (string, error) {
	switch driver {
	case internal.DriverPostgres:
		return "pgx", nil
	case internal.DriverSQLite:
		return "sqlite3", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

func gooseDialect(driver string) (goose.Dialect, error) {
	switch driver {
	case internal.DriverPostgres:
		return goose.DialectPostgres, nil
	case internal.DriverSQLite:
		return goose.DialectSQLite3, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// Open connects, applies the pool settings and pings.
func Open(ctx context.Context, cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	driverName, err := SQLDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	conn, err := sqlx.Open(driverName, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// Gorm wraps an open connection so repositories share its pool.
func Gorm(conn *sqlx.DB, driver string, lg *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case internal.DriverPostgres:
		dialector = postgres.New(postgres.Config{Conn: conn.DB})
	case internal.DriverSQLite:
		dialector = sqlite.New(sqlite.Config{Conn: conn.DB})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(lg),
	})
}

func newProvider(conn *sqlx.DB, driver string) (*goose.Provider, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}
	migrations, err := fs.Sub(db.Migrations, db.MigrationsDir)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(dialect, conn.DB, migrations)
}

// Migrate applies every pending migration and returns the applied versions.
func Migrate(ctx context.Context, conn *sqlx.DB, driver string) ([]int64, error) {
	provider, err := newProvider(conn, driver)
	if err != nil {
		return nil, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate up: %w", err)
	}

	versions := make([]int64, 0, len(results))
	for _, r := range results {
		versions = append(versions, r.Source.Version)
	}
	return versions, nil
}

// Rollback reverts the most recent migration.
func Rollback(ctx context.Context, conn *sqlx.DB, driver string) (int64, error) {
	provider, err := newProvider(conn, driver)
	if err != nil {
		return 0, err
	}

	result, err := provider.Down(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate down: %w", err)
	}
	return result.Source.Version, nil
}

// Version returns the current schema version, 0 before any migration.
func Version(ctx context.Context, conn *sqlx.DB, driver string) (int64, error) {
	provider, err := newProvider(conn, driver)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

func newGormLogger(lg *slog.Logger) gormLogger.Interface {
	if lg == nil {
		return gormLogger.Default.LogMode(gormLogger.Silent)
	}
	return gormLogger.NewSlogLogger(lg.With("component", "gorm"), gormLogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
