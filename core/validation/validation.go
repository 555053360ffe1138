// Package validation checks technician and job batches before a simulation
// is allowed to run.
package validation

import (
	"fmt"
	"math"
	"slices"

	"github.com/kilianp07/techdispatch/core/model"
)

// Messages emitted for whole-batch problems.
const (
	MsgNoTechnicians = "ERROR: No technicians available"
	MsgNoJobs        = "ERROR: No jobs provided"
)

// Absent flags the required fields an operator record left out.
type Absent uint8

const (
	AbsentID Absent = 1 << iota
	AbsentEstimatedHours
	AbsentDaysWaited
	AbsentPriority
	AbsentSubmittedHour
)

func (a Absent) has(f Absent) bool { return a&f != 0 }

// TechnicianInput is a technician as received, before defaults hide which
// fields were supplied. Pos is the 1-based position in the batch.
type TechnicianInput struct {
	model.Technician
	Absent Absent
	Pos    int
}

// JobInput is the job counterpart of TechnicianInput.
type JobInput struct {
	model.Job
	Absent Absent
	Pos    int
}

// Validate returns every problem found in the batch, in a stable order.
// ok is true only when the list is empty. The inputs are not modified.
func Validate(technicians []model.Technician, jobs []model.Job) (bool, []string) {
	techIn := make([]TechnicianInput, len(technicians))
	for i, t := range technicians {
		techIn[i] = TechnicianInput{Technician: t, Pos: i + 1}
	}
	jobIn := make([]JobInput, len(jobs))
	for i, j := range jobs {
		jobIn[i] = JobInput{Job: j, Pos: i + 1}
	}
	return ValidateInputs(techIn, jobIn)
}

// ValidateInputs is Validate for raw records. A missing field is reported
// where its value check would otherwise appear, so one pass yields the full
// list. An empty technician list is reported alone.
func ValidateInputs(technicians []TechnicianInput, jobs []JobInput) (bool, []string) {
	var errs []string
	if len(technicians) == 0 {
		return false, []string{MsgNoTechnicians}
	}

	techSeen := make(map[int]struct{}, len(technicians))
	for _, t := range technicians {
		errs = append(errs, checkTechnician(t, techSeen)...)
	}

	if len(jobs) == 0 {
		errs = append(errs, MsgNoJobs)
		return false, errs
	}

	jobSeen := make(map[int]struct{}, len(jobs))
	for _, j := range jobs {
		errs = append(errs, checkJob(j, jobSeen)...)
	}

	reachable := skillUnion(technicians)
	for _, j := range jobs {
		if j.Absent.has(AbsentID) || len(j.RequiredSkills) == 0 {
			continue
		}
		if !slices.ContainsFunc(j.RequiredSkills, func(s string) bool {
			_, ok := reachable[s]
			return ok
		}) {
			errs = append(errs, fmt.Sprintf("ERROR: Job %d requires skills %v but no tech has these skills",
				j.ID, uniqueSorted(j.RequiredSkills)))
		}
	}

	return len(errs) == 0, errs
}

func checkTechnician(t TechnicianInput, seen map[int]struct{}) []string {
	if t.Absent.has(AbsentID) {
		return []string{fmt.Sprintf("ERROR: Technician #%d missing 'id' field", t.Pos)}
	}
	var errs []string
	if _, dup := seen[t.ID]; dup {
		errs = append(errs, fmt.Sprintf("ERROR: Duplicate technician ID: %d", t.ID))
	}
	seen[t.ID] = struct{}{}
	if len(t.Skills) == 0 {
		errs = append(errs, fmt.Sprintf("ERROR: Tech %d has no skills", t.ID))
	}
	if t.FreeAtHour < 0 || !finite(t.FreeAtHour) {
		errs = append(errs, fmt.Sprintf("ERROR: Tech %d has invalid free_at_hour", t.ID))
	}
	return errs
}

func checkJob(j JobInput, seen map[int]struct{}) []string {
	if j.Absent.has(AbsentID) {
		return []string{fmt.Sprintf("ERROR: Job #%d missing 'id' field", j.Pos)}
	}
	var errs []string
	if _, dup := seen[j.ID]; dup {
		errs = append(errs, fmt.Sprintf("ERROR: Duplicate job ID: %d", j.ID))
	}
	seen[j.ID] = struct{}{}

	if len(j.RequiredSkills) == 0 {
		errs = append(errs, fmt.Sprintf("ERROR: Job %d has no required skills", j.ID))
	}
	switch {
	case j.Absent.has(AbsentEstimatedHours):
		errs = append(errs, fmt.Sprintf("ERROR: Job %d missing estimated_hours", j.ID))
	case j.EstimatedHours <= 0 || !finite(j.EstimatedHours):
		errs = append(errs, fmt.Sprintf("ERROR: Job %d has invalid duration (must be > 0)", j.ID))
	}
	switch {
	case j.Absent.has(AbsentDaysWaited):
		errs = append(errs, fmt.Sprintf("ERROR: Job %d missing days_waited", j.ID))
	case j.DaysWaited < 0 || !finite(j.DaysWaited):
		errs = append(errs, fmt.Sprintf("ERROR: Job %d has negative wait time", j.ID))
	}
	switch {
	case j.Absent.has(AbsentPriority):
		errs = append(errs, fmt.Sprintf("ERROR: Job %d missing priority field", j.ID))
	case !j.Priority.Valid():
		errs = append(errs, fmt.Sprintf(
			"ERROR: Job %d has invalid priority '%s' (must be 'critical', 'emergency', 'urgent', or 'routine')",
			j.ID, j.Priority))
	}
	switch {
	case j.Absent.has(AbsentSubmittedHour):
		errs = append(errs, fmt.Sprintf("ERROR: Job %d missing submitted_hour", j.ID))
	case j.SubmittedHour < 0 || !finite(j.SubmittedHour):
		errs = append(errs, fmt.Sprintf("ERROR: Job %d has invalid submitted_hour", j.ID))
	}
	return errs
}

func skillUnion(techs []TechnicianInput) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range techs {
		for _, s := range t.Skills {
			out[s] = struct{}{}
		}
	}
	return out
}

func uniqueSorted(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
