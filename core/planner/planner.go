// Package planner is the entry point shared by the CLI and the HTTP API. It
// turns an operator batch into a simulated schedule and fans the result out
// to the configured sinks.
package planner

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/techdispatch/core/batch"
	"github.com/kilianp07/techdispatch/core/dispatch/logging"
	"github.com/kilianp07/techdispatch/core/logger"
	"github.com/kilianp07/techdispatch/core/metrics"
	"github.com/kilianp07/techdispatch/core/notify"
	"github.com/kilianp07/techdispatch/core/report"
	"github.com/kilianp07/techdispatch/core/simulation"
	"github.com/kilianp07/techdispatch/internal/eventbus"
)

// Outcome is what callers get back from Plan.
type Outcome struct {
	RunID string `json:"run_id"`
	// Success is true when the batch validated and simulated to termination.
	Success bool `json:"success"`
	// Output is the rendered console report.
	Output string `json:"output"`
	// Error carries the internal failure message of a failed run.
	Error   string            `json:"error,omitempty"`
	Result  simulation.Result `json:"result"`
	Summary report.Summary    `json:"summary"`
}

// Manager runs batches. It keeps no per run state, so Plan may be called
// concurrently.
type Manager struct {
	sim *simulation.Simulator
	log logger.Logger

	mu       sync.RWMutex
	sink     metrics.MetricsSink
	store    logging.LogStore
	notifier notify.Notifier
}

// NewManager creates a Manager with no-op sinks.
func NewManager(cfg simulation.Config, log logger.Logger) *Manager {
	log = logger.OrNop(log)
	return &Manager{
		sim:      simulation.New(cfg, log),
		log:      log,
		sink:     metrics.NopSink{},
		store:    logging.NopStore{},
		notifier: notify.NopNotifier{},
	}
}

// SetMetricsSink configures where run summaries are recorded.
func (m *Manager) SetMetricsSink(s metrics.MetricsSink) {
	if s == nil {
		s = metrics.NopSink{}
	}
	m.mu.Lock()
	m.sink = s
	m.mu.Unlock()
}

// SetLogStore configures the store used to persist run records.
func (m *Manager) SetLogStore(s logging.LogStore) {
	if s == nil {
		s = logging.NopStore{}
	}
	m.mu.Lock()
	m.store = s
	m.mu.Unlock()
}

// SetNotifier configures who is told about finished runs.
func (m *Manager) SetNotifier(n notify.Notifier) {
	if n == nil {
		n = notify.NopNotifier{}
	}
	m.mu.Lock()
	m.notifier = n
	m.mu.Unlock()
}

// SetBus enables simulation event publishing. Call it before serving.
func (m *Manager) SetBus(bus eventbus.EventBus) { m.sim.SetBus(bus) }

// MaxHours returns the effective simulation horizon.
func (m *Manager) MaxHours() float64 { return m.sim.Config().MaxHours }

// Plan validates, simulates and reports one batch. Missing required fields
// are reported together with every other validation problem. Failures of the metrics sink, the run log
// or the notifiers are logged and never change the outcome.
func (m *Manager) Plan(ctx context.Context, b batch.Batch) Outcome {
	start := time.Now()
	runID := uuid.NewString()

	techs, jobs, ok, errs := b.Check()
	var res simulation.Result
	if ok {
		res = m.sim.RunWithID(runID, techs, jobs)
	} else {
		res = m.sim.Reject(runID, techs, jobs, errs)
	}

	out := Outcome{RunID: runID, Success: res.OK, Result: res}
	if res.State.Succeeded() {
		out.Summary = report.Build(res.Technicians, res.Jobs)
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, res, out.Summary); err != nil {
		m.log.Errorf("run %s: render report: %v", runID, err)
	}
	out.Output = buf.String()

	m.publish(ctx, out, time.Since(start))
	return out
}

func (m *Manager) publish(ctx context.Context, out Outcome, took time.Duration) {
	m.mu.RLock()
	sink, store, notifier := m.sink, m.store, m.notifier
	m.mu.RUnlock()

	res := out.Result
	now := time.Now()
	violations := len(out.Summary.Violations)
	unassigned := len(res.Jobs) - len(res.Assignments)

	if err := sink.RecordRun(metrics.RunEvent{
		RunID:         res.RunID,
		State:         string(res.State),
		OK:            res.OK,
		Technicians:   len(res.Technicians),
		Jobs:          len(res.Jobs),
		Assigned:      len(res.Assignments),
		Unassigned:    unassigned,
		SLAViolations: violations,
		FinalHour:     res.FinalHour,
		Ticks:         res.Ticks,
		Duration:      took,
		Time:          now,
	}); err != nil {
		m.log.Errorf("run %s: metrics sink: %v", res.RunID, err)
	}

	if err := store.Append(ctx, logging.RunRecord{
		RunID:       res.RunID,
		Timestamp:   now,
		State:       string(res.State),
		OK:          res.OK,
		Errors:      res.Errors,
		FinalHour:   res.FinalHour,
		Technicians: res.Technicians,
		Jobs:        res.Jobs,
		Summary:     out.Summary,
	}); err != nil {
		m.log.Errorf("run %s: run log: %v", res.RunID, err)
	}

	if err := notifier.Notify(ctx, notify.RunNotice{
		RunID:         res.RunID,
		State:         string(res.State),
		OK:            res.OK,
		Technicians:   len(res.Technicians),
		Jobs:          len(res.Jobs),
		Assigned:      len(res.Assignments),
		Unassigned:    unassigned,
		SLAViolations: violations,
		FinalHour:     res.FinalHour,
		Time:          now,
	}); err != nil {
		m.log.Errorf("run %s: notify: %v", res.RunID, err)
	}
}
