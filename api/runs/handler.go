// Package runs exposes the run log over HTTP.
package runs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/techdispatch/core/dispatch/logging"
)

// NewHandler returns an HTTP handler for GET /api/runs. Supported filters are
// start and end (RFC3339), state, technician_id, job_id and limit.
func NewHandler(store logging.LogStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []logging.RunRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func parseQuery(r *http.Request) (logging.RunQuery, error) {
	v := r.URL.Query()
	q := logging.RunQuery{State: v.Get("state")}
	var err error
	if s := v.Get("start"); s != "" {
		if q.Start, err = time.Parse(time.RFC3339, s); err != nil {
			return q, fmt.Errorf("invalid start: %w", err)
		}
	}
	if s := v.Get("end"); s != "" {
		if q.End, err = time.Parse(time.RFC3339, s); err != nil {
			return q, fmt.Errorf("invalid end: %w", err)
		}
	}
	if q.TechnicianID, err = intParam(v.Get("technician_id"), "technician_id"); err != nil {
		return q, err
	}
	if q.JobID, err = intParam(v.Get("job_id"), "job_id"); err != nil {
		return q, err
	}
	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil || q.Limit < 0 {
			return q, fmt.Errorf("invalid limit %q", s)
		}
	}
	return q, nil
}

func intParam(s, name string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, s)
	}
	return &n, nil
}
