package logging

import (
	"fmt"

	"github.com/kilianp07/techdispatch/core/factory"
)

var storeRegistry = factory.NewRegistry[LogStore]()

type fileConf struct {
	Path string `json:"path"`
}

type rotatingConf struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

type postgresConf struct {
	DSN string `json:"dsn"`
}

func init() {
	mustRegister("none", func(map[string]any) (LogStore, error) { return NopStore{}, nil })
	mustRegister("jsonl", func(conf map[string]any) (LogStore, error) {
		var c fileConf
		if err := decodePath(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONLStore(c.Path)
	})
	mustRegister("rotating", func(conf map[string]any) (LogStore, error) {
		c := rotatingConf{MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 30}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("rotating run log: path is required")
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	mustRegister("sqlite", func(conf map[string]any) (LogStore, error) {
		var c fileConf
		if err := decodePath(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})
	mustRegister("postgres", func(conf map[string]any) (LogStore, error) {
		var c postgresConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.DSN == "" {
			return nil, fmt.Errorf("postgres run log: dsn is required")
		}
		return NewPostgresStore(c.DSN)
	})
}

func mustRegister(name string, f factory.Factory[LogStore]) {
	if err := storeRegistry.Register(name, f); err != nil {
		panic(err)
	}
}

func decodePath(conf map[string]any, c *fileConf) error {
	if err := factory.Decode(conf, c); err != nil {
		return err
	}
	if c.Path == "" {
		return fmt.Errorf("run log: path is required")
	}
	return nil
}

// NewStore creates the run log backend described by cfg. An empty type
// disables the run log.
func NewStore(cfg factory.ModuleConfig) (LogStore, error) {
	if cfg.Type == "" {
		return NopStore{}, nil
	}
	s, err := storeRegistry.Create(cfg)
	if err != nil {
		return nil, fmt.Errorf("run log %s: %w", cfg.Type, err)
	}
	return s, nil
}

// Backends lists the registered backend names.
func Backends() []string {
	return storeRegistry.Names()
}
