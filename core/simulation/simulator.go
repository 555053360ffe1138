package simulation

import (
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/kilianp07/techdispatch/core/dispatch"
	"github.com/kilianp07/techdispatch/core/events"
	"github.com/kilianp07/techdispatch/core/logger"
	"github.com/kilianp07/techdispatch/core/model"
	"github.com/kilianp07/techdispatch/core/monitoring"
	"github.com/kilianp07/techdispatch/core/validation"
	"github.com/kilianp07/techdispatch/internal/eventbus"
)

// Simulator runs batches. It holds configuration only, so one Simulator may
// serve concurrent runs.
type Simulator struct {
	cfg    Config
	log    logger.Logger
	bus    eventbus.EventBus
	scorer dispatch.Scorer
}

// New creates a Simulator. Zero config values are defaulted.
func New(cfg Config, log logger.Logger) *Simulator {
	cfg.SetDefaults()
	return &Simulator{cfg: cfg, log: logger.OrNop(log)}
}

// SetBus enables event publishing.
func (s *Simulator) SetBus(bus eventbus.EventBus) { s.bus = bus }

// SetScorer replaces the default UrgencyScorer.
func (s *Simulator) SetScorer(sc dispatch.Scorer) { s.scorer = sc }

// Config returns the effective configuration.
func (s *Simulator) Config() Config { return s.cfg }

// Run simulates the batch. The inputs are copied before validation and are
// never modified.
func (s *Simulator) Run(techs []model.Technician, jobs []model.Job) Result {
	return s.RunWithID(uuid.NewString(), techs, jobs)
}

// RunWithID is Run with a caller supplied run identifier.
func (s *Simulator) RunWithID(runID string, techs []model.Technician, jobs []model.Job) Result {
	roster := dispatch.NewRoster(techs, jobs)
	res := Result{RunID: runID, State: StateValidating}

	ok, errs := validation.Validate(roster.Technicians, roster.Jobs)
	if !ok {
		return s.abort(runID, roster, errs)
	}

	res.State = StateRunning
	s.log.Infof("run %s started: %d technician(s), %d job(s)", runID, len(roster.Technicians), len(roster.Jobs))
	if err := s.loop(runID, roster, &res); err != nil {
		s.log.Errorf("run %s failed: %v", runID, err)
		monitoring.CaptureException(err, map[string]string{"run_id": runID, "category": err.Category})
		res.State = StateFailed
		res.Err = err
		res.Assignments = nil
		res.Stuck = nil
		// Hand back the untouched input rather than a half mutated roster.
		res.Technicians = model.CloneTechnicians(techs)
		res.Jobs = model.CloneJobs(jobs)
		s.finish(&res)
		return res
	}

	res.Technicians = roster.Technicians
	res.Jobs = roster.Jobs
	res.Assignments = roster.Assignments
	s.finish(&res)
	return res
}

// Reject records a run that was refused before it could start, such as a
// batch that failed validation upstream. The result is aborted with errs.
func (s *Simulator) Reject(runID string, techs []model.Technician, jobs []model.Job, errs []string) Result {
	return s.abort(runID, dispatch.NewRoster(techs, jobs), errs)
}

func (s *Simulator) abort(runID string, roster *dispatch.Roster, errs []string) Result {
	s.log.Warnf("run %s aborted: %d validation error(s)", runID, len(errs))
	res := Result{
		RunID:       runID,
		State:       StateAborted,
		Errors:      errs,
		Technicians: roster.Technicians,
		Jobs:        roster.Jobs,
	}
	s.finish(&res)
	return res
}

func (s *Simulator) loop(runID string, roster *dispatch.Roster, res *Result) (ierr *InternalError) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Debugf("panic stack: %s", debug.Stack())
			ierr = &InternalError{Category: "panic", Message: fmt.Sprint(r)}
		}
	}()

	engine := dispatch.NewEngine(roster, s.scorer, s.log)
	if s.bus != nil {
		engine.SetBus(s.bus, runID)
	}

	hour := 0.0
	for {
		engine.DispatchTick(hour)
		res.Ticks++
		s.publish(events.TickEvent{
			RunID:      runID,
			Hour:       hour,
			Assigned:   len(roster.Assignments),
			Unassigned: len(roster.Unassigned()),
		})

		if roster.AllAssigned() {
			res.State = StateComplete
			break
		}
		next, busy := roster.NextFreeHour(hour)
		if !busy {
			res.State = StateStalled
			res.Stuck = stuckJobs(roster)
			s.publish(events.StallEvent{RunID: runID, Hour: hour, JobIDs: jobIDs(res.Stuck)})
			break
		}
		if !(next > hour) {
			s.log.Warnf("run %s: clock would not advance past hour %v, stopping", runID, hour)
			res.State = StateStalled
			res.Stuck = stuckJobs(roster)
			break
		}
		hour = next
		if hour > s.cfg.MaxHours {
			s.log.Warnf("run %s reached max simulation hours (%v) at hour %v", runID, s.cfg.MaxHours, hour)
			res.State = StateTruncated
			res.Stuck = stuckJobs(roster)
			break
		}
	}
	res.FinalHour = hour
	return checkInvariants(roster)
}

func (s *Simulator) finish(res *Result) {
	res.OK = res.State.Succeeded()
	runsTotal.WithLabelValues(string(res.State)).Inc()
	s.log.Infof("run %s finished: state=%s assigned=%d ticks=%d", res.RunID, res.State, len(res.Assignments), res.Ticks)
	s.publish(events.RunFinishedEvent{
		RunID:     res.RunID,
		State:     string(res.State),
		OK:        res.OK,
		FinalHour: res.FinalHour,
		Ticks:     res.Ticks,
	})
}

func (s *Simulator) publish(ev eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

// checkInvariants verifies that each job is either fully assigned or
// untouched and that no technician is double booked.
func checkInvariants(r *dispatch.Roster) *InternalError {
	for _, j := range r.Jobs {
		set := j.AssignedTo != nil && j.StartHour != nil && j.SLAMet != nil
		unset := j.AssignedTo == nil && j.StartHour == nil && j.SLAMet == nil
		if (j.Assigned && !set) || (!j.Assigned && !unset) {
			return &InternalError{Category: "invariant", Message: fmt.Sprintf("job %d has partial assignment state", j.ID)}
		}
	}
	free := make(map[int]float64, len(r.Technicians))
	for _, a := range r.Assignments {
		if end, ok := free[a.TechnicianID]; ok && a.StartHour < end {
			return &InternalError{Category: "invariant", Message: fmt.Sprintf("technician %d double booked at hour %v", a.TechnicianID, a.StartHour)}
		}
		free[a.TechnicianID] = a.EndHour
	}
	return nil
}

func stuckJobs(r *dispatch.Roster) []StuckJob {
	var out []StuckJob
	for _, i := range r.Unassigned() {
		j := r.Jobs[i]
		out = append(out, StuckJob{JobID: j.ID, Priority: j.Priority, RequiredSkills: append([]string(nil), j.RequiredSkills...)})
	}
	return out
}

func jobIDs(s []StuckJob) []int {
	ids := make([]int, len(s))
	for i, j := range s {
		ids[i] = j.JobID
	}
	return ids
}
