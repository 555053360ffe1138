package dispatch

import "github.com/kilianp07/techdispatch/core/model"

// UrgencyNormalization converts days of backlog into score units.
const UrgencyNormalization = 5.0

// Scorer ranks a technician's fitness for a job. Higher is better.
type Scorer interface {
	Score(tech model.Technician, job model.Job) float64
}

// UrgencyScorer is the default Scorer: skill coverage plus backlog urgency.
type UrgencyScorer struct{}

func (UrgencyScorer) Score(tech model.Technician, job model.Job) float64 { return Score(tech, job) }

// Score returns the fraction of required skills the technician holds plus
// days_waited / UrgencyNormalization. Jobs without required skills score on
// urgency alone.
func Score(tech model.Technician, job model.Job) float64 {
	urgency := job.DaysWaited / UrgencyNormalization
	if len(job.RequiredSkills) == 0 {
		return urgency
	}
	matched := 0
	for _, s := range job.RequiredSkills {
		if tech.HasSkill(s) {
			matched++
		}
	}
	return float64(matched)/float64(len(job.RequiredSkills)) + urgency
}

// CanDo reports whether the technician holds every required skill.
func CanDo(tech model.Technician, job model.Job) bool {
	for _, s := range job.RequiredSkills {
		if !tech.HasSkill(s) {
			return false
		}
	}
	return true
}
