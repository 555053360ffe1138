package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/techdispatch/core/metrics"
	"github.com/kilianp07/techdispatch/core/model"
)

type captureServer struct {
	mu     sync.Mutex
	bodies []string
}

func (c *captureServer) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	c.mu.Lock()
	c.bodies = append(c.bodies, string(data))
	c.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (c *captureServer) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.bodies...)
}

func TestInfluxSinkRecordRun(t *testing.T) {
	cs := &captureServer{}
	srv := httptest.NewServer(http.HandlerFunc(cs.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Unix(1700000000, 0)
	ev := coremetrics.RunEvent{
		RunID: "r1", State: "complete", OK: true,
		Technicians: 2, Jobs: 3, Assigned: 3, SLAViolations: 1,
		FinalHour: 2.5, Ticks: 2, Duration: 1500 * time.Microsecond, Time: now,
	}
	require.NoError(t, sink.RecordRun(ev))

	bodies := cs.snapshot()
	require.Len(t, bodies, 1)
	line := strings.TrimSpace(bodies[0])
	assert.True(t, strings.HasPrefix(line, "dispatch_run,"), line)
	for _, want := range []string{"run_id=r1", "state=complete", "ok=true", "assigned=3i", "sla_violations=1i", "final_hour=2.5", "duration_ms=1.5"} {
		assert.Contains(t, line, want)
	}
	assert.True(t, strings.HasSuffix(line, " 1700000000000000000"), line)
}

func TestInfluxSinkRecordAssignments(t *testing.T) {
	cs := &captureServer{}
	srv := httptest.NewServer(http.HandlerFunc(cs.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	require.NoError(t, sink.RecordAssignments(nil))
	assert.Empty(t, cs.snapshot())

	evs := []coremetrics.AssignmentEvent{
		{RunID: "r1", JobID: 1, TechnicianID: 4, Priority: model.PriorityCritical, Response: 0.5, SLAMet: true, Time: time.Now()},
		{RunID: "r1", JobID: 2, TechnicianID: 4, Priority: model.PriorityRoutine, Response: 30, Time: time.Now()},
	}
	require.NoError(t, sink.RecordAssignments(evs))
	bodies := cs.snapshot()
	require.Len(t, bodies, 1)
	lines := strings.Split(strings.TrimSpace(bodies[0]), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "job_assignment,"), lines[0])
	assert.Contains(t, lines[0], "priority=critical")
	assert.Contains(t, lines[0], "technician_id=4")
	assert.Contains(t, lines[0], "sla_met=true")
	assert.Contains(t, lines[1], "response_hours=30")
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	var called atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called.Store(true)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	assert.True(t, called.Load())
	assert.IsType(t, coremetrics.NopSink{}, sink)
}

func TestNewInfluxSinkWithFallbackHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"influxdb","status":"pass","checks":[]}`))
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL})
	s, ok := sink.(*InfluxSink)
	require.True(t, ok)
	s.Close()
}
