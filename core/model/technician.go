package model

import "slices"

// Technician is a field worker that can be booked for jobs.
type Technician struct {
	ID     int      `json:"id" yaml:"id"`
	Skills []string `json:"skills" yaml:"skills"`
	// FreeAtHour is the simulated hour from which the technician accepts new work.
	FreeAtHour float64 `json:"free_at_hour" yaml:"free_at_hour"`
	// CurrentJob references the most recently assigned job. Informational only.
	CurrentJob *int `json:"current_job" yaml:"current_job"`
}

// HasSkill returns true if the technician holds the given skill tag.
func (t Technician) HasSkill(skill string) bool {
	return slices.Contains(t.Skills, skill)
}

// AvailableAt returns true when the technician is free at the given hour.
func (t Technician) AvailableAt(hour float64) bool {
	return t.FreeAtHour <= hour
}

// Book marks the technician busy with job from hour until the job is done.
func (t *Technician) Book(job Job, hour float64) {
	id := job.ID
	t.CurrentJob = &id
	t.FreeAtHour = hour + job.EstimatedHours
}

// Clone returns a deep copy of the technician.
func (t Technician) Clone() Technician {
	c := t
	c.Skills = slices.Clone(t.Skills)
	if t.CurrentJob != nil {
		id := *t.CurrentJob
		c.CurrentJob = &id
	}
	return c
}

// CloneTechnicians deep copies a technician slice.
func CloneTechnicians(ts []Technician) []Technician {
	if ts == nil {
		return nil
	}
	out := make([]Technician, len(ts))
	for i, t := range ts {
		out[i] = t.Clone()
	}
	return out
}
