// Package mcp parses MCP command flags and serves the session engine over
// stdio.
package mcp

import (
	"context"
	"flag"
	"log"

	"github.com/emberhall/steward/internal/mcp"
	"github.com/emberhall/steward/internal/platform/entrypoint"
	"github.com/emberhall/steward/internal/service"
	"github.com/emberhall/steward/internal/storage"
	"github.com/emberhall/steward/internal/storage/sqlite"
)

// Config holds MCP command configuration.
type Config struct {
	// Store is the sqlite database path. Empty keeps sessions in memory only.
	Store string `env:"STEWARD_STORE_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.Store, "store", cfg.Store, "sqlite database path (empty for in-memory sessions)")
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server for the session engine.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
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
		return mcp.Run(ctx, svc)
	})
}
