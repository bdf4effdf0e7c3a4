// Package config loads command configuration from STEWARD_* environment
// variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills cfg from the environment variables named in its env struct
// tags. Unset variables fall back to their envDefault values.
func ParseEnv(cfg any) error {
	if cfg == nil {
		return fmt.Errorf("config target is required")
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
