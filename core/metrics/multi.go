package metrics

import "errors"

// MultiSink fans out records to several sinks. Every sink is called even
// when an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordRun(ev RunEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordAssignments forwards to the sinks implementing AssignmentRecorder.
func (m *MultiSink) RecordAssignments(evs []AssignmentEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(AssignmentRecorder); ok {
			if err := rec.RecordAssignments(evs); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
