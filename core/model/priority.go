package model

// Priority classifies how quickly a job must be answered.
type Priority string

const (
	PriorityCritical  Priority = "critical"
	PriorityEmergency Priority = "emergency"
	PriorityUrgent    Priority = "urgent"
	PriorityRoutine   Priority = "routine"
)

// lowestRank is used for routine jobs and for any unrecognized priority.
const lowestRank = 3

var priorityRanks = map[Priority]int{
	PriorityCritical:  0,
	PriorityEmergency: 1,
	PriorityUrgent:    2,
	PriorityRoutine:   lowestRank,
}

// Priorities returns every known priority, most pressing first.
func Priorities() []Priority {
	return []Priority{PriorityCritical, PriorityEmergency, PriorityUrgent, PriorityRoutine}
}

// Valid reports whether p belongs to the fixed priority enumeration.
func (p Priority) Valid() bool {
	_, ok := priorityRanks[p]
	return ok
}

// Rank returns the dispatch rank of p. Lower ranks are served first and
// unknown priorities sort together with routine work.
func (p Priority) Rank() int {
	if r, ok := priorityRanks[p]; ok {
		return r
	}
	return lowestRank
}

// String returns the wire name of the priority.
func (p Priority) String() string { return string(p) }
