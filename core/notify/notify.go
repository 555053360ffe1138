// Package notify publishes a short notice after each planned run so that
// downstream tools can react without polling the run log.
package notify

import (
	"context"
	"errors"
	"time"
)

// RunNotice is the compact summary sent to notifiers.
type RunNotice struct {
	RunID         string    `json:"run_id"`
	State         string    `json:"state"`
	OK            bool      `json:"ok"`
	Technicians   int       `json:"technicians"`
	Jobs          int       `json:"jobs"`
	Assigned      int       `json:"assigned"`
	Unassigned    int       `json:"unassigned"`
	SLAViolations int       `json:"sla_violations"`
	FinalHour     float64   `json:"final_hour"`
	Time          time.Time `json:"time"`
}

// Notifier delivers run notices to an external system.
type Notifier interface {
	Notify(ctx context.Context, n RunNotice) error
}

// NopNotifier drops every notice.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, RunNotice) error { return nil }

// MultiNotifier fans a notice out to several notifiers. All of them are
// called; errors are joined.
type MultiNotifier struct {
	Notifiers []Notifier
}

// NewMultiNotifier returns a MultiNotifier over ns.
func NewMultiNotifier(ns ...Notifier) *MultiNotifier {
	return &MultiNotifier{Notifiers: ns}
}

func (m *MultiNotifier) Notify(ctx context.Context, n RunNotice) error {
	var errs []error
	for _, x := range m.Notifiers {
		if err := x.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every notifier exposing a Close method.
func (m *MultiNotifier) Close() error {
	var errs []error
	for _, x := range m.Notifiers {
		if c, ok := x.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
