package simulation

import (
	"fmt"

	"github.com/kilianp07/techdispatch/core/dispatch"
	"github.com/kilianp07/techdispatch/core/model"
)

// InternalError describes an unexpected failure while running.
type InternalError struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("simulation %s: %s", e.Category, e.Message)
}

// StuckJob is a job left unassigned when the run ended.
type StuckJob struct {
	JobID          int            `json:"job_id"`
	Priority       model.Priority `json:"priority"`
	RequiredSkills []string       `json:"required_skills"`
}

// Result is the final snapshot of a run. Technicians and Jobs are owned by
// the caller.
type Result struct {
	RunID       string                `json:"run_id"`
	State       State                 `json:"state"`
	OK          bool                  `json:"ok"`
	Errors      []string              `json:"errors"`
	Technicians []model.Technician    `json:"technicians"`
	Jobs        []model.Job           `json:"jobs"`
	Assignments []dispatch.Assignment `json:"assignments"`
	// Stuck lists unassigned jobs for stalled and truncated runs.
	Stuck     []StuckJob     `json:"stuck,omitempty"`
	FinalHour float64        `json:"final_hour"`
	Ticks     int            `json:"ticks"`
	Err       *InternalError `json:"internal_error,omitempty"`
}
