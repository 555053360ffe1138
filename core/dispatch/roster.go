package dispatch

import (
	"math"

	"github.com/kilianp07/techdispatch/core/model"
)

// Assignment describes one job handed to a technician during a run.
type Assignment struct {
	JobID        int            `json:"job_id"`
	TechnicianID int            `json:"technician_id"`
	Priority     model.Priority `json:"priority"`
	StartHour    float64        `json:"start_hour"`
	EndHour      float64        `json:"end_hour"`
	Response     float64        `json:"response_hours"`
	SLAWindow    float64        `json:"sla_window_hours"`
	SLAMet       bool           `json:"sla_met"`
	Score        float64        `json:"score"`
}

// Roster owns the technicians and jobs of a single run. It is never shared
// between runs.
type Roster struct {
	Technicians []model.Technician
	Jobs        []model.Job
	Assignments []Assignment
}

// NewRoster deep copies the inputs so callers keep their own slices intact.
func NewRoster(techs []model.Technician, jobs []model.Job) *Roster {
	return &Roster{
		Technicians: model.CloneTechnicians(techs),
		Jobs:        model.CloneJobs(jobs),
	}
}

// AllAssigned reports whether every job has been assigned.
func (r *Roster) AllAssigned() bool {
	for _, j := range r.Jobs {
		if !j.Assigned {
			return false
		}
	}
	return true
}

// Unassigned returns the indices of jobs still waiting, in input order.
func (r *Roster) Unassigned() []int {
	var idx []int
	for i, j := range r.Jobs {
		if !j.Assigned {
			idx = append(idx, i)
		}
	}
	return idx
}

// NextFreeHour returns the earliest free_at_hour strictly after hour. The
// boolean is false when no technician is busy past hour.
func (r *Roster) NextFreeHour(hour float64) (float64, bool) {
	next := math.Inf(1)
	found := false
	for _, t := range r.Technicians {
		if t.FreeAtHour > hour && t.FreeAtHour < next {
			next = t.FreeAtHour
			found = true
		}
	}
	return next, found
}
