package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/techdispatch/core/metrics"
)

// PromSink records run summaries in Prometheus metrics.
type PromSink struct {
	runs       *prometheus.CounterVec
	wall       *prometheus.HistogramVec
	unassigned prometheus.Gauge
	finalHour  prometheus.Histogram
	response   *prometheus.HistogramVec
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "techdispatch_planned_runs_total",
		Help: "Planned runs by terminal state and outcome",
	}, []string{"state", "ok"})
	wall := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "techdispatch_plan_duration_seconds",
		Help:    "Wall time spent planning a batch",
		Buckets: prometheus.DefBuckets,
	}, []string{"state"})
	unassigned := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "techdispatch_last_run_unassigned_jobs",
		Help: "Jobs left unassigned by the most recent run",
	})
	finalHour := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "techdispatch_run_final_hour",
		Help:    "Simulated hour at which runs ended",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 24, 48, 100},
	})
	response := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "techdispatch_assignment_response_hours",
		Help:    "Response hours of assignments forwarded from the event bus",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 24, 48},
	}, []string{"priority", "sla_met"})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if wall, err = register(reg, wall); err != nil {
		return nil, err
	}
	if unassigned, err = register(reg, unassigned); err != nil {
		return nil, err
	}
	if finalHour, err = register(reg, finalHour); err != nil {
		return nil, err
	}
	if response, err = register(reg, response); err != nil {
		return nil, err
	}
	return &PromSink{runs: runs, wall: wall, unassigned: unassigned, finalHour: finalHour, response: response}, nil
}

// register returns the collector already registered under the same
// descriptor when there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.State, strconv.FormatBool(ev.OK)).Inc()
	s.wall.WithLabelValues(ev.State).Observe(ev.Duration.Seconds())
	s.unassigned.Set(float64(ev.Unassigned))
	s.finalHour.Observe(ev.FinalHour)
	return nil
}

func (s *PromSink) RecordAssignments(evs []coremetrics.AssignmentEvent) error {
	for _, e := range evs {
		s.response.WithLabelValues(string(e.Priority), strconv.FormatBool(e.SLAMet)).Observe(e.Response)
	}
	return nil
}
