// Package redis publishes run notices over Redis Pub/Sub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kilianp07/techdispatch/core/factory"
	"github.com/kilianp07/techdispatch/core/notify"
	"github.com/kilianp07/techdispatch/infra/logger"
)

// DefaultChannel carries run notices when no channel is configured.
const DefaultChannel = "techdispatch:runs"

// Config selects the Redis server. URL takes precedence over Addr.
type Config struct {
	URL      string `json:"url"`
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Channel  string `json:"channel"`
	// TimeoutMS bounds each PUBLISH.
	TimeoutMS int `json:"timeout_ms"`
}

func (c *Config) SetDefaults() {
	if c.Channel == "" {
		c.Channel = DefaultChannel
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 2000
	}
}

func (c Config) Validate() error {
	if c.URL == "" && c.Addr == "" {
		return fmt.Errorf("redis: url or addr is required")
	}
	return nil
}

func (c Config) options() (*goredis.Options, error) {
	if c.URL != "" {
		return goredis.ParseURL(c.URL)
	}
	return &goredis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB}, nil
}

type publisher interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
	Close() error
}

// Notifier publishes JSON encoded run notices on a channel.
type Notifier struct {
	rdb     publisher
	channel string
	timeout time.Duration
	log     logger.Logger
}

// NewNotifier creates a notifier for cfg. The connection is established
// lazily by the client on first publish.
func NewNotifier(cfg Config, log logger.Logger) (*Notifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opt, err := cfg.options()
	if err != nil {
		return nil, fmt.Errorf("redis options: %w", err)
	}
	return newNotifier(goredis.NewClient(opt), cfg, log), nil
}

func newNotifier(rdb publisher, cfg Config, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.New("redis_notifier")
	}
	return &Notifier{
		rdb:     rdb,
		channel: cfg.Channel,
		timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		log:     log,
	}
}

// Channel returns the Pub/Sub channel notices are published on.
func (n *Notifier) Channel() string { return n.channel }

func (n *Notifier) Notify(ctx context.Context, rn notify.RunNotice) error {
	data, err := json.Marshal(rn)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	receivers, err := n.rdb.Publish(ctx, n.channel, data).Result()
	if err != nil {
		return fmt.Errorf("redis publish %s: %w", n.channel, err)
	}
	n.log.Debugw("run notice published", map[string]any{
		"run_id":    rn.RunID,
		"channel":   n.channel,
		"receivers": receivers,
	})
	return nil
}

func (n *Notifier) Close() error { return n.rdb.Close() }

func init() {
	_ = notify.Register("redis", func(conf map[string]any) (notify.Notifier, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewNotifier(c, nil)
	})
}
