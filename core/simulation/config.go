package simulation

import (
	"fmt"
	"math"
)

// DefaultMaxHours bounds the simulated clock when no limit is configured.
const DefaultMaxHours = 100.0

// Config holds run policy.
type Config struct {
	// MaxHours stops the clock once it advances past this hour.
	MaxHours float64 `json:"max_hours"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.MaxHours == 0 {
		c.MaxHours = DefaultMaxHours
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if math.IsNaN(c.MaxHours) || c.MaxHours <= 0 {
		return fmt.Errorf("simulation: max_hours must be > 0, got %v", c.MaxHours)
	}
	return nil
}
