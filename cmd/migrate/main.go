// Command migrate moves the postgres character schema up or down.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"github.com/cory-johannsen/eoschar/internal/config"
	"github.com/cory-johannsen/eoschar/internal/observability"
	"github.com/cory-johannsen/eoschar/internal/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "up or down")
	steps := flag.Int("steps", 0, "migrations to apply; 0 applies all")
	flag.Parse()

	if *direction != "up" && *direction != "down" {
		return fmt.Errorf("direction must be up or down, got %q", *direction)
	}
	if *steps < 0 {
		return fmt.Errorf("steps must be >= 0, got %d", *steps)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	m, err := postgres.NewMigrator(cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer m.Close()

	start := time.Now()
	n := *steps
	if *direction == "down" {
		n = -n
	}
	switch {
	case n != 0:
		err = m.Steps(n)
	case *direction == "up":
		err = m.Up()
	default:
		err = m.Down()
	}
	changed := !errors.Is(err, migrate.ErrNoChange)
	if err != nil && changed {
		return fmt.Errorf("migrating %s: %w", *direction, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("reading schema version: %w", verr)
	}
	logger.Info("migration finished",
		zap.String("direction", *direction),
		zap.Bool("changed", changed),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
