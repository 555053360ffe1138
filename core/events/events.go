package events

import "github.com/kilianp07/techdispatch/core/model"

// TickEvent is published after every dispatch tick.
type TickEvent struct {
	RunID      string
	Hour       float64
	Assigned   int
	Unassigned int
}

// AssignmentEvent is published for each job assigned by the engine.
type AssignmentEvent struct {
	RunID        string
	JobID        int
	TechnicianID int
	Priority     model.Priority
	StartHour    float64
	EndHour      float64
	Response     float64
	SLAMet       bool
}

// StallEvent lists the jobs left behind when no technician will free up.
type StallEvent struct {
	RunID  string
	Hour   float64
	JobIDs []int
}

// RunFinishedEvent is emitted once per run with its terminal state.
type RunFinishedEvent struct {
	RunID     string
	State     string
	OK        bool
	FinalHour float64
	Ticks     int
}
