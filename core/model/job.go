package model

import "slices"

// Job is a pending service request waiting for a technician.
type Job struct {
	ID             int      `json:"id" yaml:"id"`
	RequiredSkills []string `json:"required_skills" yaml:"required_skills"`
	Priority       Priority `json:"priority" yaml:"priority"`
	// SubmittedHour is the simulated hour at which the job entered the queue.
	SubmittedHour float64 `json:"submitted_hour" yaml:"submitted_hour"`
	// DaysWaited is backlog age carried in from before the simulation.
	DaysWaited     float64 `json:"days_waited" yaml:"days_waited"`
	EstimatedHours float64 `json:"estimated_hours" yaml:"estimated_hours"`

	Assigned   bool     `json:"assigned" yaml:"assigned"`
	AssignedTo *int     `json:"assigned_to" yaml:"assigned_to"`
	StartHour  *float64 `json:"start_hour" yaml:"start_hour"`
	SLAMet     *bool    `json:"sla_met" yaml:"sla_met"`
}

// Assign records the assignment of the job to a technician. All run state
// fields are written together; a job that is already assigned is left as is
// and false is returned.
func (j *Job) Assign(technicianID int, hour float64, slaMet bool) bool {
	if j.Assigned {
		return false
	}
	tid, start, met := technicianID, hour, slaMet
	j.Assigned = true
	j.AssignedTo = &tid
	j.StartHour = &start
	j.SLAMet = &met
	return true
}

// ResponseTime returns the hours between submission and start of work.
// The boolean is false when the job has not been started.
func (j Job) ResponseTime() (float64, bool) {
	if !j.Assigned || j.StartHour == nil {
		return 0, false
	}
	return *j.StartHour - j.SubmittedHour, true
}

// EndHour returns the simulated hour at which work on the job finishes.
func (j Job) EndHour() (float64, bool) {
	if !j.Assigned || j.StartHour == nil {
		return 0, false
	}
	return *j.StartHour + j.EstimatedHours, true
}

// Clone returns a deep copy of the job.
func (j Job) Clone() Job {
	c := j
	c.RequiredSkills = slices.Clone(j.RequiredSkills)
	if j.AssignedTo != nil {
		v := *j.AssignedTo
		c.AssignedTo = &v
	}
	if j.StartHour != nil {
		v := *j.StartHour
		c.StartHour = &v
	}
	if j.SLAMet != nil {
		v := *j.SLAMet
		c.SLAMet = &v
	}
	return c
}

// CloneJobs deep copies a job slice.
func CloneJobs(js []Job) []Job {
	if js == nil {
		return nil
	}
	out := make([]Job, len(js))
	for i, j := range js {
		out[i] = j.Clone()
	}
	return out
}
