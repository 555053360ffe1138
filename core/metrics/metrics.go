package metrics

import (
	"time"

	"github.com/kilianp07/techdispatch/core/model"
)

// RunEvent summarises one planned run.
type RunEvent struct {
	RunID         string
	State         string
	OK            bool
	Technicians   int
	Jobs          int
	Assigned      int
	Unassigned    int
	SLAViolations int
	FinalHour     float64
	Ticks         int
	// Duration is the wall time spent planning.
	Duration time.Duration
	Time     time.Time
}

// AssignmentEvent describes one assignment made during a run.
type AssignmentEvent struct {
	RunID        string
	JobID        int
	TechnicianID int
	Priority     model.Priority
	StartHour    float64
	Response     float64
	SLAMet       bool
	Score        float64
	Time         time.Time
}

// MetricsSink records run summaries for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// AssignmentRecorder is implemented by sinks that keep per assignment detail.
type AssignmentRecorder interface {
	RecordAssignments(evs []AssignmentEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error                  { return nil }
func (NopSink) RecordAssignments([]AssignmentEvent) error { return nil }
