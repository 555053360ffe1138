package logging

import (
	"context"
	"slices"
	"time"

	"github.com/kilianp07/techdispatch/core/model"
	"github.com/kilianp07/techdispatch/core/report"
)

// RunRecord captures one finished simulation run for audit.
type RunRecord struct {
	RunID       string             `json:"run_id"`
	Timestamp   time.Time          `json:"timestamp"`
	State       string             `json:"state"`
	OK          bool               `json:"ok"`
	Errors      []string           `json:"errors"`
	FinalHour   float64            `json:"final_hour"`
	Technicians []model.Technician `json:"technicians"`
	Jobs        []model.Job        `json:"jobs"`
	Summary     report.Summary     `json:"summary"`
}

// RunQuery defines filters for retrieving records. Zero values match all.
type RunQuery struct {
	Start        time.Time
	End          time.Time
	State        string
	TechnicianID *int
	JobID        *int
	Limit        int
}

// Matches reports whether rec satisfies every filter of q.
func (q RunQuery) Matches(rec RunRecord) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.State != "" && rec.State != q.State {
		return false
	}
	if q.TechnicianID != nil && !slices.ContainsFunc(rec.Technicians, func(t model.Technician) bool {
		return t.ID == *q.TechnicianID
	}) {
		return false
	}
	if q.JobID != nil && !slices.ContainsFunc(rec.Jobs, func(j model.Job) bool {
		return j.ID == *q.JobID
	}) {
		return false
	}
	return true
}

// limit truncates recs to q.Limit when set.
func (q RunQuery) limit(recs []RunRecord) []RunRecord {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[:q.Limit]
	}
	return recs
}

// LogStore persists RunRecords and supports querying. Simulations never read
// from it.
type LogStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// NopStore drops everything.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error { return nil }
func (NopStore) Query(context.Context, RunQuery) ([]RunRecord, error) {
	return nil, nil
}
func (NopStore) Close() error { return nil }
