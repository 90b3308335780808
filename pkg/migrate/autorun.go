package migrate

import (
	"context"
	"fmt"

	"github.com/patelpulse/pulse-backend/pkg/config"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/instance"
	"github.com/patelpulse/pulse-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations from cfg.Migrations.Dir when running
// in dev with PULSE_AUTO_MIGRATE set. The directory is validated first so a
// malformed file stops startup before any statement runs.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	dir := cfg.Migrations.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := ValidateDir(dir); err != nil {
		return fmt.Errorf("validating migrations: %w", err)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"migrations_dir": dir,
		"instance":       instance.GetID(),
	})

	before, err := CurrentVersion(sqlDB)
	if err != nil {
		return err
	}
	if err := Run(ctx, sqlDB, dir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	after, err := CurrentVersion(sqlDB)
	if err != nil {
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{"version_from": before, "version_to": after})
	if before == after {
		logg.Info(ctx, "schema already at latest migration")
		return nil
	}
	logg.Info(ctx, "applied pending migrations")
	return nil
}
