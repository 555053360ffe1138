package simulation

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/techdispatch/core/events"
	"github.com/kilianp07/techdispatch/core/model"
	"github.com/kilianp07/techdispatch/core/monitoring"
	"github.com/kilianp07/techdispatch/core/sla"
	"github.com/kilianp07/techdispatch/internal/eventbus"
)

func job(id int, p model.Priority, est float64, skills ...string) model.Job {
	return model.Job{ID: id, RequiredSkills: skills, Priority: p, EstimatedHours: est}
}

func tech(id int, skills ...string) model.Technician {
	return model.Technician{ID: id, Skills: skills}
}

func run(t *testing.T, techs []model.Technician, jobs []model.Job) Result {
	t.Helper()
	return New(Config{}, nil).Run(techs, jobs)
}

func TestScenarioBoundaryInclusive(t *testing.T) {
	res := run(t,
		[]model.Technician{tech(1, "hvac")},
		[]model.Job{job(1, model.PriorityEmergency, 2, "hvac"), job(2, model.PriorityEmergency, 3, "hvac")},
	)
	require.Equal(t, StateComplete, res.State)
	assert.True(t, res.OK)
	assert.Equal(t, 0.0, *res.Jobs[0].StartHour)
	assert.True(t, *res.Jobs[0].SLAMet)
	assert.Equal(t, 2.0, *res.Jobs[1].StartHour)
	assert.True(t, *res.Jobs[1].SLAMet)
	assert.Equal(t, 5.0, res.Technicians[0].FreeAtHour)
	assert.Equal(t, 2, *res.Technicians[0].CurrentJob)
}

func TestScenarioSLAViolatedByHalfHour(t *testing.T) {
	res := run(t,
		[]model.Technician{tech(1, "hvac")},
		[]model.Job{job(1, model.PriorityEmergency, 2.5, "hvac"), job(2, model.PriorityEmergency, 3, "hvac")},
	)
	require.Equal(t, StateComplete, res.State)
	second := res.Jobs[1]
	assert.Equal(t, 2.5, *second.StartHour)
	assert.False(t, *second.SLAMet)
	assert.InDelta(t, 0.5, sla.Overage(second), 1e-9)
}

func TestScenarioNoTechnicians(t *testing.T) {
	res := run(t, nil, []model.Job{job(1, model.PriorityRoutine, 1, "hvac")})
	assert.Equal(t, StateAborted, res.State)
	assert.False(t, res.OK)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "No technicians")
	assert.Zero(t, res.Ticks)
}

func TestScenarioZeroDuration(t *testing.T) {
	res := run(t, []model.Technician{tech(1, "hvac")}, []model.Job{job(1, model.PriorityRoutine, 0, "hvac")})
	assert.Equal(t, StateAborted, res.State)
	assert.False(t, res.OK)
	assert.Contains(t, strings.Join(res.Errors, "\n"), "invalid duration")
	assert.False(t, res.Jobs[0].Assigned)
}

func TestScenarioUnreachableSkill(t *testing.T) {
	bad := job(2, "asap", 1, "plumbing")
	res := run(t,
		[]model.Technician{tech(1, "plumbing")},
		[]model.Job{job(1, model.PriorityUrgent, 1, "hvac"), bad},
	)
	assert.Equal(t, StateAborted, res.State)
	all := strings.Join(res.Errors, "\n")
	assert.Contains(t, all, "no tech has these skills")
	assert.Contains(t, all, "invalid priority")
}

func TestScenarioSingleJobCompletesAtHourZero(t *testing.T) {
	j := job(1, model.PriorityRoutine, 1, "plumbing")
	j.DaysWaited = 2
	res := run(t, []model.Technician{tech(1, "plumbing")}, []model.Job{j})
	require.Equal(t, StateComplete, res.State)
	assert.True(t, res.OK)
	assert.Equal(t, 0.0, res.FinalHour)
	assert.Equal(t, 1, res.Ticks)
	require.Len(t, res.Assignments, 1)
	assert.InDelta(t, 1.4, res.Assignments[0].Score, 1e-9)
}

func TestStalledWhenSkillsNeverFree(t *testing.T) {
	// No single technician holds both skills.
	techs := []model.Technician{tech(1, "electrical"), tech(2, "hvac")}
	res := run(t, techs, []model.Job{job(1, model.PriorityUrgent, 1, "hvac", "electrical")})
	require.Equal(t, StateStalled, res.State)
	assert.True(t, res.OK)
	require.Len(t, res.Stuck, 1)
	assert.Equal(t, 1, res.Stuck[0].JobID)
	assert.ElementsMatch(t, []string{"hvac", "electrical"}, res.Stuck[0].RequiredSkills)
}

func TestTruncatedAfterMaxHours(t *testing.T) {
	jobs := []model.Job{
		job(1, model.PriorityRoutine, 6, "hvac"),
		job(2, model.PriorityRoutine, 6, "hvac"),
		job(3, model.PriorityRoutine, 6, "hvac"),
	}
	res := New(Config{MaxHours: 10}, nil).Run([]model.Technician{tech(1, "hvac")}, jobs)
	require.Equal(t, StateTruncated, res.State)
	assert.True(t, res.OK)
	assert.Equal(t, 12.0, res.FinalHour)
	assert.Len(t, res.Assignments, 2)
	require.Len(t, res.Stuck, 1)
	assert.Equal(t, 3, res.Stuck[0].JobID)
}

func TestHigherPriorityTakesSoleTechnician(t *testing.T) {
	jobs := []model.Job{
		job(1, model.PriorityRoutine, 1, "hvac"),
		job(2, model.PriorityUrgent, 1, "hvac"),
		job(3, model.PriorityCritical, 1, "hvac"),
	}
	res := run(t, []model.Technician{tech(1, "hvac")}, jobs)
	require.Equal(t, StateComplete, res.State)
	assert.Equal(t, 0.0, *res.Jobs[2].StartHour)
	assert.Equal(t, 1.0, *res.Jobs[1].StartHour)
	assert.Equal(t, 2.0, *res.Jobs[0].StartHour)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	techs := []model.Technician{tech(1, "hvac")}
	jobs := []model.Job{job(1, model.PriorityRoutine, 1, "hvac")}
	res := run(t, techs, jobs)
	require.Equal(t, StateComplete, res.State)
	assert.False(t, jobs[0].Assigned)
	assert.Nil(t, techs[0].CurrentJob)
	assert.Equal(t, 0.0, techs[0].FreeAtHour)
}

type panicScorer struct{}

func (panicScorer) Score(model.Technician, model.Job) float64 { panic("scorer exploded") }

type captured struct{ errs []error }

func (c *captured) CaptureException(err error, _ map[string]string) { c.errs = append(c.errs, err) }
func (c *captured) Recover()                                        {}
func (c *captured) Flush(time.Duration)                             {}

func TestPanicBecomesFailedRun(t *testing.T) {
	mon := &captured{}
	prev := monitoring.Init(mon)
	t.Cleanup(func() { monitoring.Init(prev) })

	sim := New(Config{}, nil)
	sim.SetScorer(panicScorer{})
	jobs := []model.Job{job(1, model.PriorityRoutine, 1, "hvac")}
	res := sim.Run([]model.Technician{tech(1, "hvac")}, jobs)

	assert.Equal(t, StateFailed, res.State)
	assert.False(t, res.OK)
	require.NotNil(t, res.Err)
	assert.Equal(t, "panic", res.Err.Category)
	assert.Contains(t, res.Err.Message, "scorer exploded")
	assert.False(t, res.Jobs[0].Assigned, "failed runs return the input state")
	require.Len(t, mon.errs, 1)
	var ie *InternalError
	assert.True(t, errors.As(mon.errs[0], &ie))
}

func TestRunPublishesEvents(t *testing.T) {
	bus := eventbus.New()
	ch := bus.Subscribe()
	sim := New(Config{}, nil)
	sim.SetBus(bus)
	res := sim.RunWithID("fixed", []model.Technician{tech(1, "hvac")}, []model.Job{job(1, model.PriorityRoutine, 1, "hvac")})
	require.Equal(t, "fixed", res.RunID)
	bus.Close()

	var kinds []string
	for ev := range ch {
		switch e := ev.(type) {
		case events.AssignmentEvent:
			kinds = append(kinds, "assignment")
		case events.TickEvent:
			kinds = append(kinds, "tick")
		case events.RunFinishedEvent:
			assert.Equal(t, "complete", e.State)
			kinds = append(kinds, "finished")
		}
	}
	assert.Equal(t, []string{"assignment", "tick", "finished"}, kinds)
}

func TestConfigValidate(t *testing.T) {
	c := Config{}
	c.SetDefaults()
	assert.Equal(t, DefaultMaxHours, c.MaxHours)
	assert.NoError(t, c.Validate())
	assert.Error(t, Config{MaxHours: -1}.Validate())
}

// TestRandomBatchesKeepInvariants exercises the properties every finished run
// must satisfy on generated input.
func TestRandomBatchesKeepInvariants(t *testing.T) {
	skills := []string{"hvac", "plumbing", "electrical"}
	priorities := model.Priorities()
	rng := rand.New(rand.NewPCG(7, 11))

	for iter := 0; iter < 200; iter++ {
		var techs []model.Technician
		for i := 0; i < 1+rng.IntN(4); i++ {
			techs = append(techs, model.Technician{
				ID:         i + 1,
				Skills:     []string{skills[rng.IntN(len(skills))], skills[rng.IntN(len(skills))]},
				FreeAtHour: float64(rng.IntN(3)),
			})
		}
		var jobs []model.Job
		for i := 0; i < 1+rng.IntN(10); i++ {
			jobs = append(jobs, model.Job{
				ID:             100 + i,
				RequiredSkills: []string{skills[rng.IntN(len(skills))]},
				Priority:       priorities[rng.IntN(len(priorities))],
				SubmittedHour:  float64(rng.IntN(4)),
				DaysWaited:     float64(rng.IntN(6)),
				EstimatedHours: 0.5 + float64(rng.IntN(8)),
			})
		}

		res := New(Config{MaxHours: 30}, nil).Run(techs, jobs)
		if res.State == StateAborted {
			continue
		}
		require.True(t, res.OK, "iteration %d: %s", iter, res.State)

		for _, j := range res.Jobs {
			if !j.Assigned {
				assert.Nil(t, j.StartHour)
				assert.Nil(t, j.SLAMet)
				continue
			}
			require.NotNil(t, j.StartHour)
			require.NotNil(t, j.SLAMet)
			want := *j.StartHour-j.SubmittedHour <= sla.Window(j)
			assert.Equal(t, want, *j.SLAMet, "job %d", j.ID)
		}

		lastEnd := map[int]float64{}
		for _, a := range res.Assignments {
			assert.GreaterOrEqual(t, a.StartHour, lastEnd[a.TechnicianID])
			assert.GreaterOrEqual(t, a.EndHour, lastEnd[a.TechnicianID])
			lastEnd[a.TechnicianID] = a.EndHour
		}
	}
}

func TestRejectFinishesAborted(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	ch := bus.Subscribe()

	s := New(Config{}, nil)
	s.SetBus(bus)
	res := s.Reject("r-1", []model.Technician{tech(1, "hvac")}, nil, []string{"ERROR: Job 1 missing days_waited"})

	assert.Equal(t, StateAborted, res.State)
	assert.False(t, res.OK)
	assert.Equal(t, []string{"ERROR: Job 1 missing days_waited"}, res.Errors)
	assert.Zero(t, res.Ticks)
	require.Len(t, res.Technicians, 1)

	select {
	case ev := <-ch:
		fin, ok := ev.(events.RunFinishedEvent)
		require.True(t, ok)
		assert.Equal(t, "aborted", fin.State)
	case <-time.After(time.Second):
		t.Fatal("no run finished event")
	}
}
