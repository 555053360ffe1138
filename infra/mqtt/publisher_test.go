package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/techdispatch/core/monitoring"
	"github.com/kilianp07/techdispatch/core/notify"
	"github.com/kilianp07/techdispatch/infra/logger"
)

type published struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

// mockClient implements pahoClient for tests.
type mockClient struct {
	opts        *paho.ClientOptions
	published   []published
	publishErrs []error
	connectErr  error
	disconnects int
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) { m.disconnects++ }
func (m *mockClient) Publish(topic string, qos byte, retain bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, published{topic, qos, retain, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

func useMock(t *testing.T, mc *mockClient) {
	t.Helper()
	prev := newMQTTClient
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = prev })
}

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) {}

func TestNotifyPublishesOnStateTopic(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883", QoS: 1, Retain: true}, logger.NopLogger{})
	require.NoError(t, err)

	notice := notify.RunNotice{RunID: "r1", State: "stalled", OK: true, Assigned: 2, Unassigned: 1}
	require.NoError(t, n.Notify(context.Background(), notice))

	require.Len(t, mc.published, 1)
	p := mc.published[0]
	assert.Equal(t, "techdispatch/runs/stalled", p.topic)
	assert.Equal(t, byte(1), p.qos)
	assert.True(t, p.retain)
	var got notify.RunNotice
	require.NoError(t, json.Unmarshal(p.payload, &got))
	assert.Equal(t, "r1", got.RunID)
	assert.Equal(t, 1, got.Unassigned)

	require.NoError(t, n.Close())
	assert.Equal(t, 1, mc.disconnects)
}

func TestNotifyCustomPrefix(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883", TopicPrefix: "ops/dispatch/"}, logger.NopLogger{})
	require.NoError(t, err)
	assert.Equal(t, "ops/dispatch/complete", n.Topic("complete"))
}

func TestNotifyRetries(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("net fail"), nil}}
	useMock(t, mc)
	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1}, logger.NopLogger{})
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), notify.RunNotice{RunID: "r", State: "complete"}))
	assert.Len(t, mc.published, 2)
}

func TestNotifyFailureCaptured(t *testing.T) {
	fail := errors.New("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail}}
	useMock(t, mc)
	mon := &recordMonitor{}
	prev := monitoring.Init(mon)
	defer monitoring.Init(prev)

	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1}, logger.NopLogger{})
	require.NoError(t, err)
	err = n.Notify(context.Background(), notify.RunNotice{RunID: "r9", State: "aborted"})
	require.ErrorIs(t, err, fail)
	require.Error(t, mon.err)
	assert.Equal(t, "mqtt", mon.tags["module"])
	assert.Equal(t, "r9", mon.tags["run_id"])
}

func TestNotifyStopsOnCanceledContext(t *testing.T) {
	fail := errors.New("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail, fail}}
	useMock(t, mc)
	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883", MaxRetries: 3, BackoffMS: 1000}, logger.NopLogger{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = n.Notify(ctx, notify.RunNotice{State: "complete"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, mc.published, 1)
}

func TestNewNotifierConnectError(t *testing.T) {
	mc := &mockClient{connectErr: errors.New("refused")}
	useMock(t, mc)
	_, err := NewNotifier(Config{Broker: "tcp://localhost:1883"}, logger.NopLogger{})
	assert.ErrorContains(t, err, "refused")
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	_, err := NewNotifier(Config{Broker: "tcp://localhost:1883", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}, logger.NopLogger{})
	require.NoError(t, err)
	require.True(t, mc.opts.WillEnabled)
	assert.Equal(t, "lwt", mc.opts.WillTopic)
	assert.Equal(t, "bye", string(mc.opts.WillPayload))
}

func TestRegisteredInNotifyFactory(t *testing.T) {
	assert.Contains(t, notify.Types(), "mqtt")
}
