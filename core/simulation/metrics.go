package simulation

import "github.com/prometheus/client_golang/prometheus"

var runsTotal *prometheus.CounterVec

func newCollectors() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techdispatch_runs_total",
			Help: "Number of simulation runs by terminal state",
		},
		[]string{"state"},
	)
}

func init() {
	runsTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers simulation metrics on reg, or on
// prometheus.DefaultRegisterer when reg is nil.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(runsTotal)
}

// ResetMetrics recreates the collectors, registering them on reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	runsTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
