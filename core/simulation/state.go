package simulation

// State is the lifecycle position of a run.
type State string

const (
	StateValidating State = "validating"
	StateRunning    State = "running"
	// StateComplete means every job was assigned.
	StateComplete State = "complete"
	// StateStalled means jobs remain but no technician will ever free up.
	StateStalled State = "stalled"
	// StateTruncated means the clock passed Config.MaxHours.
	StateTruncated State = "truncated"
	// StateAborted means validation failed and nothing was simulated.
	StateAborted State = "aborted"
	// StateFailed means the run hit an internal error.
	StateFailed State = "failed"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s {
	case StateComplete, StateStalled, StateTruncated, StateAborted, StateFailed:
		return true
	}
	return false
}

// Succeeded is true for runs that simulated to termination.
func (s State) Succeeded() bool {
	return s == StateComplete || s == StateStalled || s == StateTruncated
}
