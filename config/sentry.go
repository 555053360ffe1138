package config

import "fmt"

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	Release          string  `json:"release"`
	ServerName       string  `json:"server_name"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
}

func (c *SentryConfig) SetDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.ServerName == "" {
		c.ServerName = "techdispatch"
	}
}

func (c SentryConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate must be within [0,1]")
	}
	return nil
}
