package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/techdispatch/core/batch"
)

// AssignmentDef is one expected assignment.
type AssignmentDef struct {
	Job        int     `yaml:"job"`
	Technician int     `yaml:"technician"`
	Start      float64 `yaml:"start"`
	SLAMet     bool    `yaml:"sla_met"`
}

// Expected describes the outcome a scenario must produce. Zero values are
// not checked, except State and Success which always are.
type Expected struct {
	State         string          `yaml:"state"`
	Success       bool            `yaml:"success"`
	FinalHour     *float64        `yaml:"final_hour,omitempty"`
	Assignments   []AssignmentDef `yaml:"assignments,omitempty"`
	Unassigned    []int           `yaml:"unassigned,omitempty"`
	ErrorsContain []string        `yaml:"errors_contain,omitempty"`
	Violations    *int            `yaml:"violations,omitempty"`
	// MaxOverage is the largest SLA overage among violations, in hours.
	MaxOverage *float64 `yaml:"max_overage,omitempty"`
}

// Scenario is a named batch with its expected outcome.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	MaxHours    float64     `yaml:"max_hours,omitempty"`
	Batch       batch.Batch `yaml:"batch"`
	Expected    Expected    `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	if sc.Expected.State == "" {
		return nil, fmt.Errorf("scenario %s has no expected state", sc.Name)
	}
	return &sc, nil
}
