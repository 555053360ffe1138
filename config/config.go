package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/techdispatch/core/factory"
	"github.com/kilianp07/techdispatch/core/metrics"
	"github.com/kilianp07/techdispatch/core/simulation"
)

// EnvPrefix marks environment overrides. Nested keys use a double
// underscore, e.g. TECHDISPATCH_SIMULATION__MAX_HOURS=48.
const EnvPrefix = "TECHDISPATCH_"

type Config struct {
	Simulation simulation.Config      `json:"simulation"`
	Server     ServerConfig           `json:"server"`
	Metrics    metrics.Config         `json:"metrics"`
	Logging    LoggingConfig          `json:"logging"`
	Notifiers  []factory.ModuleConfig `json:"notifiers"`
	Sentry     SentryConfig           `json:"sentry"`
}

// Load reads the YAML or JSON file at path, applies environment overrides,
// then defaults and validation. A missing file is not an error; the
// configuration then comes from defaults and the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// envKey maps TECHDISPATCH_SERVER__RATE_LIMIT to server.rate_limit.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SetDefaults fills unset values in every section.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Server.SetDefaults()
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate checks every section and returns the first problem.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink #%d has no type", i+1)
		}
	}
	for i, n := range c.Notifiers {
		if n.Type == "" {
			return fmt.Errorf("notifiers: entry #%d has no type", i+1)
		}
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}
