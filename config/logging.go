package config

import (
	"fmt"
	"slices"

	"github.com/kilianp07/techdispatch/core/dispatch/logging"
	"github.com/kilianp07/techdispatch/core/factory"
)

var levels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

// LoggingConfig selects the process log level and the run log backend.
type LoggingConfig struct {
	Level string `json:"level"`
	// RunLog configures the audit store of finished runs. An empty type
	// disables it.
	RunLog factory.ModuleConfig `json:"run_log"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level and the run log backend name.
func (c LoggingConfig) Validate() error {
	if !slices.Contains(levels, c.Level) {
		return fmt.Errorf("unknown level %s", c.Level)
	}
	if t := c.RunLog.Type; t != "" && !slices.Contains(logging.Backends(), t) {
		return fmt.Errorf("unknown run_log backend %s", t)
	}
	return nil
}
