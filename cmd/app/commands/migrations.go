package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/anonymizer/internal/app"
	"github.com/allisson/anonymizer/internal/config"
)

// RunMigrations executes vault database migrations based on the configured
// driver. Determines migration path from VaultDriver (sqlite, postgres, or
// mysql) and applies all pending migrations. Returns nil if no migrations to
// apply. Logs migration progress and success.
func RunMigrations() error {
	cfg := config.Load()

	// Create container just for logger
	container := app.NewContainer(cfg)
	logger := container.Logger()

	logger.Info("running vault database migrations",
		slog.String("driver", cfg.VaultDriver),
	)

	var migrationsPath, databaseURL string
	switch cfg.VaultDriver {
	case "sqlite":
		migrationsPath = "file://migrations/sqlite"
		databaseURL = "sqlite://" + cfg.VaultDSN
	case "postgres":
		migrationsPath = "file://migrations/postgresql"
		databaseURL = cfg.VaultDSN
	case "mysql":
		migrationsPath = "file://migrations/mysql"
		databaseURL = cfg.VaultDSN
	default:
		return fmt.Errorf("unsupported vault driver: %s", cfg.VaultDriver)
	}

	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
