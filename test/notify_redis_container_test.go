//go:build !no_containers

package test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/techdispatch/app"
	"github.com/kilianp07/techdispatch/core/factory"
	"github.com/kilianp07/techdispatch/core/notify"
	"github.com/kilianp07/techdispatch/infra/redis"
	"github.com/kilianp07/techdispatch/test/util"
)

func TestRedisNotifierContainer(t *testing.T) {
	requireDocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	addr, cleanup, err := util.StartRedis(ctx)
	if err != nil {
		t.Skipf("redis: %v", err)
	}
	defer cleanup()

	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	defer func() { _ = rdb.Close() }()
	sub := rdb.Subscribe(ctx, redis.DefaultChannel)
	defer func() { _ = sub.Close() }()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	cfg := baseConfig(t)
	cfg.Notifiers = []factory.ModuleConfig{{Type: "redis", Conf: map[string]any{"url": "redis://" + addr + "/0"}}}
	svc, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	api := httptest.NewServer(svc.Handler())
	defer api.Close()
	out := postSchedule(t, api.URL, `{"technicians":[],"jobs":[]}`)
	require.False(t, out.Success)

	select {
	case m := <-sub.Channel():
		var n notify.RunNotice
		require.NoError(t, json.Unmarshal([]byte(m.Payload), &n))
		assert.Equal(t, out.RunID, n.RunID)
		assert.Equal(t, "aborted", n.State)
		assert.False(t, n.OK)
	case <-ctx.Done():
		t.Fatal("no run notice received")
	}
}
