package config

import "fmt"

// ServerConfig defines the HTTP API listener.
type ServerConfig struct {
	Address string `json:"address"`
	// RateLimit is the sustained number of requests per second accepted on
	// the API. Zero disables limiting.
	RateLimit float64 `json:"rate_limit"`
	Burst     int     `json:"burst"`
	// MaxBodyBytes bounds the size of a schedule request.
	MaxBodyBytes           int64 `json:"max_body_bytes"`
	ReadTimeoutSeconds     int   `json:"read_timeout_seconds"`
	ShutdownTimeoutSeconds int   `json:"shutdown_timeout_seconds"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8000"
	}
	if c.RateLimit > 0 && c.Burst <= 0 {
		c.Burst = int(c.RateLimit * 2)
		if c.Burst < 1 {
			c.Burst = 1
		}
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 4 << 20
	}
	if c.ReadTimeoutSeconds <= 0 {
		c.ReadTimeoutSeconds = 15
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		c.ShutdownTimeoutSeconds = 10
	}
}

func (c ServerConfig) Validate() error {
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}
