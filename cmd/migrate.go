package cmd

import (
	"context"
	"errors"
	"log"

	"github.com/frahmantamala/vortex-demo/internal/database"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded db migrations under db/migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	lg := initLogger(cfg)

	conn, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	defer conn.Close()

	if migrateRollback {
		version, err := database.Rollback(ctx, conn, cfg.Database.Driver)
		if errors.Is(err, goose.ErrNoNextVersion) {
			lg.Info("nothing to roll back")
			return nil
		}
		if err != nil {
			log.Fatalf("goose down: %v", err)
		}
		lg.Info("rolled back migration", "version", version)
		return nil
	}

	applied, err := database.Migrate(ctx, conn, cfg.Database.Driver)
	if err != nil {
		log.Fatalf("goose up: %v", err)
	}

	current, err := database.Version(ctx, conn, cfg.Database.Driver)
	if err != nil {
		return err
	}
	lg.Info("migrations applied", "applied", applied, "version", current)
	return nil
}
