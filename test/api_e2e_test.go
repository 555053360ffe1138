package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/techdispatch/app"
	"github.com/kilianp07/techdispatch/core/factory"
	"github.com/kilianp07/techdispatch/test/util"
)

type scheduleResp struct {
	Success bool   `json:"success"`
	RunID   string `json:"run_id"`
	State   string `json:"state"`
	Output  string `json:"output"`
}

func postSchedule(t *testing.T, base, body string) scheduleResp {
	t.Helper()
	resp, err := http.Post(base+"/api/schedule", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out scheduleResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestScheduleEndToEnd(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "prometheus"}}

	svc, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.StartBackground(ctx)

	api := httptest.NewServer(svc.Handler())
	defer api.Close()
	prom := httptest.NewServer(promhttp.Handler())
	defer prom.Close()

	readyCtx, readyCancel := context.WithTimeout(ctx, util.MetricTimeout)
	defer readyCancel()
	require.NoError(t, util.WaitForHTTP(readyCtx, api.URL+"/health"))

	out := postSchedule(t, api.URL, scheduleBody)
	assert.True(t, out.Success)
	assert.Equal(t, "complete", out.State)
	assert.NotEmpty(t, out.RunID)
	assert.Contains(t, out.Output, "Job 1")

	metricCtx, metricCancel := context.WithTimeout(ctx, util.MetricTimeout)
	defer metricCancel()
	require.NoError(t, util.WaitForMetric(metricCtx, prom.URL, `techdispatch_planned_runs_total{ok="true",state="complete"} 1`))
	require.NoError(t, util.WaitForMetric(metricCtx, prom.URL, `techdispatch_assignment_response_hours_count{priority="emergency",sla_met="true"} 1`))

	resp, err := http.Get(api.URL + "/api/runs?state=complete")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var runs []struct {
		RunID string `json:"run_id"`
		State string `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, out.RunID, runs[0].RunID)
}

func TestScheduleValidationFailureIsLogged(t *testing.T) {
	cfg := baseConfig(t)
	svc, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	api := httptest.NewServer(svc.Handler())
	defer api.Close()

	out := postSchedule(t, api.URL, `{"technicians":[],"jobs":[]}`)
	assert.False(t, out.Success)
	assert.Equal(t, "aborted", out.State)

	require.Eventually(t, func() bool {
		resp, err := http.Get(api.URL + "/api/runs?state=aborted")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		var runs []json.RawMessage
		return json.NewDecoder(resp.Body).Decode(&runs) == nil && len(runs) == 1
	}, time.Second, 20*time.Millisecond)
}
