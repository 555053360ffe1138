package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/techdispatch/core/factory"
	"github.com/kilianp07/techdispatch/core/monitoring"
	"github.com/kilianp07/techdispatch/core/notify"
	"github.com/kilianp07/techdispatch/infra/logger"
)

// Notifier publishes run notices as JSON on <prefix>/<state>.
type Notifier struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewNotifier connects to the broker described by cfg.
func NewNotifier(cfg Config, log logger.Logger) (*Notifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.New("mqtt_notifier")
	}
	cli, err := connect(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Notifier{
		cli:        cli,
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}, nil
}

// Topic returns the topic a notice for state is published on.
func (n *Notifier) Topic(state string) string {
	return n.prefix + "/" + state
}

// Notify publishes the notice, retrying with exponential backoff. The final
// failure is reported to the monitor.
func (n *Notifier) Notify(ctx context.Context, rn notify.RunNotice) error {
	payload, err := json.Marshal(rn)
	if err != nil {
		return err
	}
	topic := n.Topic(rn.State)
	var publishErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		token := n.cli.Publish(topic, n.qos, n.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			n.log.Infof("published run %s to %s", rn.RunID, topic)
			return nil
		}
		n.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == n.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.backoff * time.Duration(1<<attempt)):
		}
	}
	err = fmt.Errorf("mqtt publish %s: %w", topic, publishErr)
	monitoring.CaptureException(err, map[string]string{"module": "mqtt", "run_id": rn.RunID})
	return err
}

// Close gracefully closes the MQTT connection.
func (n *Notifier) Close() error {
	if n.cli != nil && n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
	return nil
}

func init() {
	_ = notify.Register("mqtt", func(conf map[string]any) (notify.Notifier, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewNotifier(c, nil)
	})
}
