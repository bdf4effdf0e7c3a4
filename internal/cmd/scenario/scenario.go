// Package scenario parses scenario command flags and runs a Lua scenario
// against an in-process session engine.
package scenario

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"time"

	"github.com/emberhall/steward/internal/platform/entrypoint"
	"github.com/emberhall/steward/internal/service"
	"github.com/emberhall/steward/internal/storage"
	"github.com/emberhall/steward/internal/storage/sqlite"
	"github.com/emberhall/steward/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	// Scenario is the path to the Lua scenario file.
	Scenario string `env:"STEWARD_SCENARIO_FILE"`
	// Store is the sqlite database path. Empty keeps sessions in memory only.
	Store   string        `env:"STEWARD_STORE_PATH"`
	Verbose bool          `env:"STEWARD_SCENARIO_VERBOSE"`
	Timeout time.Duration `env:"STEWARD_SCENARIO_TIMEOUT" envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "sqlite database path (empty for in-memory sessions)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the scenario command.
func Run(ctx context.Context, cfg Config, errOut io.Writer) error {
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScenario, func(ctx context.Context) error {
		var store storage.EventStore
		if cfg.Store != "" {
			sqliteStore, err := sqlite.Open(cfg.Store)
			if err != nil {
				return err
			}
			defer func() {
				if err := sqliteStore.Close(); err != nil {
					log.Printf("close store: %v", err)
				}
			}()
			store = sqliteStore
		}

		svc := service.New(store)
		if err := svc.LoadSessions(ctx); err != nil {
			return err
		}

		logger := log.New(errOut, "", 0)
		return scenario.RunFile(ctx, svc, scenario.Config{
			Timeout: cfg.Timeout,
			Verbose: cfg.Verbose,
			Logger:  logger,
		}, cfg.Scenario)
	})
}
