package batch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/techdispatch/core/model"
	"github.com/kilianp07/techdispatch/core/validation"
)

func TestLoadYAML(t *testing.T) {
	b, err := Load("testdata/batch.yaml")
	require.NoError(t, err)
	techs, jobs, ok, errs := b.Check()
	assert.True(t, ok)
	assert.Empty(t, errs)
	require.Len(t, techs, 2)
	assert.Equal(t, 1.5, techs[1].FreeAtHour)
	assert.Equal(t, 0.0, techs[0].FreeAtHour)
	require.Len(t, jobs, 1)
	assert.Equal(t, model.PriorityUrgent, jobs[0].Priority)
	assert.Equal(t, 3.0, jobs[0].EstimatedHours)
}

func TestLoadJSONIgnoresRunState(t *testing.T) {
	b, err := Load("testdata/batch.json")
	require.NoError(t, err)
	_, jobs, ok, errs := b.Check()
	assert.True(t, ok)
	assert.Empty(t, errs)
	require.Len(t, jobs, 1)
	assert.False(t, jobs[0].Assigned)
	assert.Equal(t, model.PriorityCritical, jobs[0].Priority)
}

func TestLoadUnsupported(t *testing.T) {
	_, err := Load("testdata/batch.toml")
	assert.Error(t, err)
	_, err = Decode(strings.NewReader("x"), "toml")
	assert.EqualError(t, err, "unsupported format: toml")
}

func TestDecodeEmptyYAML(t *testing.T) {
	b, err := Decode(strings.NewReader(""), "yaml")
	require.NoError(t, err)
	assert.Empty(t, b.Technicians)
}

func TestCheckReportsMissingFieldsInPlace(t *testing.T) {
	in := `
technicians:
  - skills: [hvac]
  - id: 2
    skills: [hvac]
  - id: 2
    skills: [hvac]
jobs:
  - required_skills: [hvac]
  - id: 5
    required_skills: [hvac]
  - id: 6
    required_skills: [gas]
    priority: urgent
    submitted_hour: 0
    days_waited: 1
    estimated_hours: 0
`
	b, err := Decode(strings.NewReader(in), "yaml")
	require.NoError(t, err)
	techs, jobs, ok, errs := b.Check()
	assert.False(t, ok)
	assert.Len(t, techs, 2)
	assert.Len(t, jobs, 2)
	assert.Equal(t, []string{
		"ERROR: Technician #1 missing 'id' field",
		"ERROR: Duplicate technician ID: 2",
		"ERROR: Job #1 missing 'id' field",
		"ERROR: Job 5 missing estimated_hours",
		"ERROR: Job 5 missing days_waited",
		"ERROR: Job 5 missing priority field",
		"ERROR: Job 5 missing submitted_hour",
		"ERROR: Job 6 has invalid duration (must be > 0)",
		"ERROR: Job 6 requires skills [gas] but no tech has these skills",
	}, errs)
}

func TestCheckEmptyRosterIgnoresMissingFields(t *testing.T) {
	b := Batch{Jobs: []JobRecord{{RequiredSkills: []string{"hvac"}}}}
	_, _, ok, errs := b.Check()
	assert.False(t, ok)
	assert.Equal(t, []string{"ERROR: No technicians available"}, errs)
}

func TestInputsFlagAbsentFields(t *testing.T) {
	p := "routine"
	b := Batch{
		Technicians: []TechnicianRecord{{Skills: []string{"hvac"}}},
		Jobs:        []JobRecord{{Priority: &p}},
	}
	techs, jobs := b.Inputs()
	require.Len(t, techs, 1)
	require.Len(t, jobs, 1)
	assert.Equal(t, validation.AbsentID, techs[0].Absent)
	assert.Equal(t, 1, techs[0].Pos)
	assert.Equal(t, validation.AbsentID|validation.AbsentEstimatedHours|validation.AbsentDaysWaited|validation.AbsentSubmittedHour, jobs[0].Absent)
	assert.Equal(t, model.PriorityRoutine, jobs[0].Priority)
}

func TestFromModelRoundTrip(t *testing.T) {
	techs := []model.Technician{{ID: 1, Skills: []string{"hvac"}, FreeAtHour: 2}}
	jobs := []model.Job{{ID: 3, RequiredSkills: []string{"hvac"}, Priority: model.PriorityRoutine, EstimatedHours: 1, DaysWaited: 4, SubmittedHour: 1}}
	gotT, gotJ, ok, errs := FromModel(techs, jobs).Check()
	assert.True(t, ok)
	assert.Empty(t, errs)
	assert.Equal(t, techs, gotT)
	assert.Equal(t, jobs, gotJ)
}
