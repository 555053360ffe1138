package scenarios

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/techdispatch/core/planner"
	"github.com/kilianp07/techdispatch/core/simulation"
	"github.com/kilianp07/techdispatch/infra/logger"
	"github.com/kilianp07/techdispatch/infra/metrics"
)

// RunScenario plans the scenario batch and reports every mismatch with the
// expected outcome.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	mgr := planner.NewManager(simulation.Config{MaxHours: sc.MaxHours}, logger.NopLogger{})
	mgr.SetMetricsSink(sink)
	out := mgr.Plan(context.Background(), sc.Batch)
	res := out.Result
	exp := sc.Expected

	if string(res.State) != exp.State {
		t.Errorf("scenario %s expected state %s, got %s (errors: %v)", sc.Name, exp.State, res.State, res.Errors)
	}
	if out.Success != exp.Success {
		t.Errorf("scenario %s expected success=%v, got %v", sc.Name, exp.Success, out.Success)
	}
	if exp.FinalHour != nil && res.FinalHour != *exp.FinalHour {
		t.Errorf("scenario %s expected final hour %v, got %v", sc.Name, *exp.FinalHour, res.FinalHour)
	}
	for _, want := range exp.ErrorsContain {
		if !containsMessage(res.Errors, want) {
			t.Errorf("scenario %s expected an error containing %q, got %v", sc.Name, want, res.Errors)
		}
	}
	for _, want := range exp.Assignments {
		checkAssignment(t, sc.Name, res, want)
	}
	if exp.Unassigned != nil && !equalInts(out.Summary.Unassigned, exp.Unassigned) {
		t.Errorf("scenario %s expected unassigned %v, got %v", sc.Name, exp.Unassigned, out.Summary.Unassigned)
	}
	if exp.Violations != nil && len(out.Summary.Violations) != *exp.Violations {
		t.Errorf("scenario %s expected %d violation(s), got %d", sc.Name, *exp.Violations, len(out.Summary.Violations))
	}
	if exp.MaxOverage != nil {
		worst := 0.0
		for _, v := range out.Summary.Violations {
			worst = math.Max(worst, v.Overage)
		}
		if math.Abs(worst-*exp.MaxOverage) > 1e-9 {
			t.Errorf("scenario %s expected max overage %v, got %v", sc.Name, *exp.MaxOverage, worst)
		}
	}

	if n, err := testutil.GatherAndCount(reg, "techdispatch_planned_runs_total"); err != nil || n != 1 {
		t.Errorf("scenario %s expected one planned run series, got %d (%v)", sc.Name, n, err)
	}
}

func checkAssignment(t *testing.T, name string, res simulation.Result, want AssignmentDef) {
	t.Helper()
	for _, j := range res.Jobs {
		if j.ID != want.Job {
			continue
		}
		switch {
		case !j.Assigned:
			t.Errorf("scenario %s expected job %d to be assigned", name, want.Job)
		case *j.AssignedTo != want.Technician:
			t.Errorf("scenario %s expected job %d on tech %d, got %d", name, want.Job, want.Technician, *j.AssignedTo)
		case *j.StartHour != want.Start:
			t.Errorf("scenario %s expected job %d to start at %v, got %v", name, want.Job, want.Start, *j.StartHour)
		case *j.SLAMet != want.SLAMet:
			t.Errorf("scenario %s expected job %d sla_met=%v", name, want.Job, want.SLAMet)
		}
		return
	}
	t.Errorf("scenario %s has no job %d", name, want.Job)
}

func containsMessage(msgs []string, sub string) bool {
	for _, m := range msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
