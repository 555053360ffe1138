package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/techdispatch/core/model"
	"github.com/kilianp07/techdispatch/core/validation"
)

// TechnicianRecord is a technician as supplied by the operator.
type TechnicianRecord struct {
	ID         *int     `json:"id" yaml:"id"`
	Skills     []string `json:"skills" yaml:"skills"`
	FreeAtHour *float64 `json:"free_at_hour,omitempty" yaml:"free_at_hour,omitempty"`
}

// JobRecord is a job as supplied by the operator.
type JobRecord struct {
	ID             *int     `json:"id" yaml:"id"`
	RequiredSkills []string `json:"required_skills" yaml:"required_skills"`
	Priority       *string  `json:"priority" yaml:"priority"`
	SubmittedHour  *float64 `json:"submitted_hour" yaml:"submitted_hour"`
	DaysWaited     *float64 `json:"days_waited" yaml:"days_waited"`
	EstimatedHours *float64 `json:"estimated_hours" yaml:"estimated_hours"`
}

// Batch is one dispatch preview request.
type Batch struct {
	Technicians []TechnicianRecord `json:"technicians" yaml:"technicians"`
	Jobs        []JobRecord        `json:"jobs" yaml:"jobs"`
}

// Load reads a batch from a .yaml, .yml or .json file.
func Load(path string) (Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return Batch{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	b, err := Decode(f, ext)
	if err != nil {
		return Batch{}, fmt.Errorf("batch %s: %w", path, err)
	}
	return b, nil
}

// Decode reads a batch from r in the given format ("yaml", "yml" or "json").
func Decode(r io.Reader, format string) (Batch, error) {
	var b Batch
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&b); err != nil && err != io.EOF {
			return b, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&b); err != nil {
			return b, err
		}
	default:
		return b, fmt.Errorf("unsupported format: %s", format)
	}
	return b, nil
}

// FromModel builds a batch from already typed values.
func FromModel(techs []model.Technician, jobs []model.Job) Batch {
	var b Batch
	for _, t := range techs {
		id, free := t.ID, t.FreeAtHour
		b.Technicians = append(b.Technicians, TechnicianRecord{ID: &id, Skills: append([]string(nil), t.Skills...), FreeAtHour: &free})
	}
	for _, j := range jobs {
		id, p, sub, days, est := j.ID, string(j.Priority), j.SubmittedHour, j.DaysWaited, j.EstimatedHours
		b.Jobs = append(b.Jobs, JobRecord{
			ID:             &id,
			RequiredSkills: append([]string(nil), j.RequiredSkills...),
			Priority:       &p,
			SubmittedHour:  &sub,
			DaysWaited:     &days,
			EstimatedHours: &est,
		})
	}
	return b
}

// Inputs converts the records for validation. Absent fields are flagged and
// left at their zero value, except free_at_hour which defaults to 0.
func (b Batch) Inputs() ([]validation.TechnicianInput, []validation.JobInput) {
	techs := make([]validation.TechnicianInput, 0, len(b.Technicians))
	for i, r := range b.Technicians {
		in := validation.TechnicianInput{Pos: i + 1}
		in.Skills = append([]string(nil), r.Skills...)
		if r.ID == nil {
			in.Absent |= validation.AbsentID
		} else {
			in.ID = *r.ID
		}
		if r.FreeAtHour != nil {
			in.FreeAtHour = *r.FreeAtHour
		}
		techs = append(techs, in)
	}

	jobs := make([]validation.JobInput, 0, len(b.Jobs))
	for i, r := range b.Jobs {
		in := validation.JobInput{Pos: i + 1}
		in.RequiredSkills = append([]string(nil), r.RequiredSkills...)
		if r.ID == nil {
			in.Absent |= validation.AbsentID
		} else {
			in.ID = *r.ID
		}
		if r.EstimatedHours == nil {
			in.Absent |= validation.AbsentEstimatedHours
		} else {
			in.EstimatedHours = *r.EstimatedHours
		}
		if r.DaysWaited == nil {
			in.Absent |= validation.AbsentDaysWaited
		} else {
			in.DaysWaited = *r.DaysWaited
		}
		if r.Priority == nil {
			in.Absent |= validation.AbsentPriority
		} else {
			in.Priority = model.Priority(*r.Priority)
		}
		if r.SubmittedHour == nil {
			in.Absent |= validation.AbsentSubmittedHour
		} else {
			in.SubmittedHour = *r.SubmittedHour
		}
		jobs = append(jobs, in)
	}
	return techs, jobs
}

// Check validates the batch in one pass and converts it into model values.
// Missing fields are reported next to every other problem. Records without
// an id are left out of the returned values, which are only meaningful when
// ok is true.
func (b Batch) Check() (techs []model.Technician, jobs []model.Job, ok bool, errs []string) {
	techIn, jobIn := b.Inputs()
	ok, errs = validation.ValidateInputs(techIn, jobIn)
	for _, t := range techIn {
		if t.Absent&validation.AbsentID == 0 {
			techs = append(techs, t.Technician)
		}
	}
	for _, j := range jobIn {
		if j.Absent&validation.AbsentID == 0 {
			jobs = append(jobs, j.Job)
		}
	}
	return techs, jobs, ok, errs
}
