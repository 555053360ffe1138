package dispatch

import (
	"cmp"
	"slices"

	"github.com/kilianp07/techdispatch/core/events"
	"github.com/kilianp07/techdispatch/core/logger"
	"github.com/kilianp07/techdispatch/core/sla"
	"github.com/kilianp07/techdispatch/internal/eventbus"
)

// Engine is the greedy per tick dispatcher. Jobs are visited by priority rank
// then backlog age and each gets the best free qualified technician. Nothing
// is ever reassigned.
type Engine struct {
	roster *Roster
	scorer Scorer
	log    logger.Logger
	bus    eventbus.EventBus
	runID  string
}

// NewEngine creates an engine over the roster. A nil scorer selects
// UrgencyScorer and a nil logger discards output.
func NewEngine(r *Roster, scorer Scorer, log logger.Logger) *Engine {
	if scorer == nil {
		scorer = UrgencyScorer{}
	}
	return &Engine{roster: r, scorer: scorer, log: logger.OrNop(log)}
}

// SetBus publishes an AssignmentEvent for each assignment tagged with runID.
func (e *Engine) SetBus(bus eventbus.EventBus, runID string) {
	e.bus = bus
	e.runID = runID
}

// Roster returns the state the engine mutates.
func (e *Engine) Roster() *Roster { return e.roster }

// DispatchTick assigns as many waiting jobs as possible at hour and reports
// whether at least one was assigned.
func (e *Engine) DispatchTick(hour float64) bool {
	pending := e.roster.Unassigned()
	if len(pending) == 0 {
		return false
	}
	jobs := e.roster.Jobs
	slices.SortStableFunc(pending, func(a, b int) int {
		if c := cmp.Compare(jobs[a].Priority.Rank(), jobs[b].Priority.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(jobs[b].DaysWaited, jobs[a].DaysWaited)
	})

	assigned := false
	for _, ji := range pending {
		ti, score, ok := e.bestTechnician(ji, hour)
		if !ok {
			continue
		}
		e.assign(ji, ti, hour, score)
		assigned = true
	}
	ticksTotal.Inc()
	return assigned
}

// bestTechnician returns the highest scoring free technician able to do the
// job. Ties keep the first technician in roster order.
func (e *Engine) bestTechnician(ji int, hour float64) (int, float64, bool) {
	job := e.roster.Jobs[ji]
	best, bestScore := -1, 0.0
	for ti, t := range e.roster.Technicians {
		if !t.AvailableAt(hour) || !CanDo(t, job) {
			continue
		}
		s := e.scorer.Score(t, job)
		if best < 0 || s > bestScore {
			best, bestScore = ti, s
		}
	}
	return best, bestScore, best >= 0
}

func (e *Engine) assign(ji, ti int, hour, score float64) {
	job := &e.roster.Jobs[ji]
	tech := &e.roster.Technicians[ti]

	met := sla.MetAt(*job, hour)
	if !job.Assign(tech.ID, hour, met) {
		return
	}
	tech.Book(*job, hour)

	a := Assignment{
		JobID:        job.ID,
		TechnicianID: tech.ID,
		Priority:     job.Priority,
		StartHour:    hour,
		EndHour:      hour + job.EstimatedHours,
		Response:     hour - job.SubmittedHour,
		SLAWindow:    sla.Window(*job),
		SLAMet:       met,
		Score:        score,
	}
	e.roster.Assignments = append(e.roster.Assignments, a)
	observeAssignment(a)

	e.log.Debugw("job assigned", map[string]any{
		"run_id":     e.runID,
		"hour":       hour,
		"job_id":     a.JobID,
		"technician": a.TechnicianID,
		"priority":   string(a.Priority),
		"response":   a.Response,
		"sla_window": a.SLAWindow,
		"sla_met":    a.SLAMet,
	})
	if e.bus != nil {
		e.bus.Publish(events.AssignmentEvent{
			RunID:        e.runID,
			JobID:        a.JobID,
			TechnicianID: a.TechnicianID,
			Priority:     a.Priority,
			StartHour:    a.StartHour,
			EndHour:      a.EndHour,
			Response:     a.Response,
			SLAMet:       a.SLAMet,
		})
	}
}
