// Package sla maps job priorities to response windows and checks whether an
// assignment honoured them.
package sla

import (
	"math"

	"github.com/kilianp07/techdispatch/core/model"
)

// DefaultWindow applies to any priority missing from the table.
const DefaultWindow = 24.0

var windows = map[model.Priority]float64{
	model.PriorityCritical:  1,
	model.PriorityEmergency: 2,
	model.PriorityUrgent:    8,
	model.PriorityRoutine:   24,
}

// WindowFor returns the allowed response hours for a priority.
func WindowFor(p model.Priority) float64 {
	if w, ok := windows[p]; ok {
		return w
	}
	return DefaultWindow
}

// Window returns the allowed response hours for the job.
func Window(job model.Job) float64 { return WindowFor(job.Priority) }

// MetAt reports whether starting job at hour would honour its window.
// The boundary is inclusive.
func MetAt(job model.Job, hour float64) bool {
	return hour-job.SubmittedHour <= Window(job)
}

// Met is false for unassigned jobs. It is meant to be evaluated once at
// assignment time; the stored Job.SLAMet is authoritative afterwards.
func Met(job model.Job) bool {
	if !job.Assigned || job.StartHour == nil {
		return false
	}
	return MetAt(job, *job.StartHour)
}

// Overage returns how many hours past its window the job started, or 0.
func Overage(job model.Job) float64 {
	rt, ok := job.ResponseTime()
	if !ok {
		return 0
	}
	return math.Max(0, rt-Window(job))
}
