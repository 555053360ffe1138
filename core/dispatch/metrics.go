package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	jobsAssigned  *prometheus.CounterVec
	slaViolations *prometheus.CounterVec
	responseHours *prometheus.HistogramVec
	ticksTotal    prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.HistogramVec, prometheus.Counter) {
	assigned := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techdispatch_jobs_assigned_total",
			Help: "Number of jobs assigned to a technician",
		},
		[]string{"priority"},
	)
	violations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techdispatch_sla_violations_total",
			Help: "Number of assignments that started after their SLA window",
		},
		[]string{"priority"},
	)
	resp := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "techdispatch_response_hours",
			Help:    "Simulated hours between job submission and start of work",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 24, 48, 96},
		},
		[]string{"priority"},
	)
	ticks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "techdispatch_dispatch_ticks_total",
			Help: "Number of dispatch ticks evaluated",
		},
	)
	return assigned, violations, resp, ticks
}

func init() {
	jobsAssigned, slaViolations, responseHours, ticksTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(jobsAssigned, slaViolations, responseHours, ticksTotal)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	jobsAssigned, slaViolations, responseHours, ticksTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

func observeAssignment(a Assignment) {
	p := string(a.Priority)
	jobsAssigned.WithLabelValues(p).Inc()
	responseHours.WithLabelValues(p).Observe(a.Response)
	if !a.SLAMet {
		slaViolations.WithLabelValues(p).Inc()
	}
}
