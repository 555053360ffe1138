// Package report derives operator facing summaries from the final state of
// a run. It never changes the state it reads.
package report

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/techdispatch/core/model"
	"github.com/kilianp07/techdispatch/core/sla"
)

// TimelineEntry is one row of the assignment timeline.
type TimelineEntry struct {
	JobID        int            `json:"job_id"`
	Priority     model.Priority `json:"priority"`
	Assigned     bool           `json:"assigned"`
	TechnicianID int            `json:"technician_id,omitempty"`
	StartHour    float64        `json:"start_hour,omitempty"`
	EndHour      float64        `json:"end_hour,omitempty"`
	Response     float64        `json:"response_hours,omitempty"`
	SLAWindow    float64        `json:"sla_window_hours"`
	SLAMet       bool           `json:"sla_met"`
}

// PriorityStats aggregates one priority class.
type PriorityStats struct {
	Priority    model.Priority `json:"priority"`
	SLAWindow   float64        `json:"sla_window_hours"`
	Total       int            `json:"total"`
	Assigned    int            `json:"assigned"`
	Violations  int            `json:"sla_violations"`
	AvgResponse float64        `json:"avg_response_hours"`
	MinResponse float64        `json:"min_response_hours"`
	MaxResponse float64        `json:"max_response_hours"`
}

// AssignmentRate returns Assigned/Total, or 0 for an empty class.
func (p PriorityStats) AssignmentRate() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Assigned) / float64(p.Total)
}

// Violation is an assigned job that started after its SLA window.
type Violation struct {
	JobID     int            `json:"job_id"`
	Priority  model.Priority `json:"priority"`
	Response  float64        `json:"response_hours"`
	SLAWindow float64        `json:"sla_window_hours"`
	Overage   float64        `json:"overage_hours"`
}

// JobRef identifies a job booked on a technician.
type JobRef struct {
	ID       int            `json:"id"`
	Priority model.Priority `json:"priority"`
}

// TechnicianLoad summarises the work booked on a technician.
type TechnicianLoad struct {
	TechnicianID int      `json:"technician_id"`
	FreeAtHour   float64  `json:"free_at_hour"`
	Jobs         []JobRef `json:"jobs"`
	BookedHours  float64  `json:"booked_hours"`
}

// Summary is the complete report of a run.
type Summary struct {
	TotalJobs    int              `json:"total_jobs"`
	AssignedJobs int              `json:"assigned_jobs"`
	Timeline     []TimelineEntry  `json:"timeline"`
	Priorities   []PriorityStats  `json:"priorities"`
	Violations   []Violation      `json:"sla_violations"`
	Technicians  []TechnicianLoad `json:"technicians"`
	Unassigned   []int            `json:"unassigned"`
}

// Build computes the summary for the given final state.
func Build(techs []model.Technician, jobs []model.Job) Summary {
	s := Summary{TotalJobs: len(jobs)}
	s.Timeline = timeline(jobs)

	for _, j := range jobs {
		if !j.Assigned {
			s.Unassigned = append(s.Unassigned, j.ID)
			continue
		}
		s.AssignedJobs++
		if j.SLAMet != nil && !*j.SLAMet {
			rt, _ := j.ResponseTime()
			s.Violations = append(s.Violations, Violation{
				JobID:     j.ID,
				Priority:  j.Priority,
				Response:  rt,
				SLAWindow: sla.Window(j),
				Overage:   sla.Overage(j),
			})
		}
	}

	for _, p := range model.Priorities() {
		s.Priorities = append(s.Priorities, priorityStats(p, jobs))
	}

	for _, t := range techs {
		load := TechnicianLoad{TechnicianID: t.ID, FreeAtHour: t.FreeAtHour}
		for _, j := range jobs {
			if j.AssignedTo != nil && *j.AssignedTo == t.ID {
				load.Jobs = append(load.Jobs, JobRef{ID: j.ID, Priority: j.Priority})
				load.BookedHours += j.EstimatedHours
			}
		}
		s.Technicians = append(s.Technicians, load)
	}
	return s
}

// Priority returns the stats for p.
func (s Summary) Priority(p model.Priority) (PriorityStats, bool) {
	i := slices.IndexFunc(s.Priorities, func(ps PriorityStats) bool { return ps.Priority == p })
	if i < 0 {
		return PriorityStats{}, false
	}
	return s.Priorities[i], true
}

func timeline(jobs []model.Job) []TimelineEntry {
	out := make([]TimelineEntry, 0, len(jobs))
	for _, j := range jobs {
		e := TimelineEntry{JobID: j.ID, Priority: j.Priority, SLAWindow: sla.Window(j)}
		if j.Assigned && j.StartHour != nil && j.AssignedTo != nil {
			e.Assigned = true
			e.TechnicianID = *j.AssignedTo
			e.StartHour = *j.StartHour
			e.EndHour, _ = j.EndHour()
			e.Response, _ = j.ResponseTime()
			e.SLAMet = j.SLAMet != nil && *j.SLAMet
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b TimelineEntry) int {
		return cmp.Compare(startKey(a), startKey(b))
	})
	return out
}

func startKey(e TimelineEntry) float64 {
	if !e.Assigned {
		return math.Inf(1)
	}
	return e.StartHour
}

func priorityStats(p model.Priority, jobs []model.Job) PriorityStats {
	ps := PriorityStats{Priority: p, SLAWindow: sla.WindowFor(p)}
	var responses []float64
	for _, j := range jobs {
		if j.Priority != p {
			continue
		}
		ps.Total++
		rt, ok := j.ResponseTime()
		if !ok {
			continue
		}
		ps.Assigned++
		responses = append(responses, rt)
		if j.SLAMet != nil && !*j.SLAMet {
			ps.Violations++
		}
	}
	if len(responses) > 0 {
		ps.AvgResponse = stat.Mean(responses, nil)
		ps.MinResponse = floats.Min(responses)
		ps.MaxResponse = floats.Max(responses)
	}
	return ps
}
