// Package schedule serves the dispatch preview endpoints.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/techdispatch/core/batch"
	"github.com/kilianp07/techdispatch/core/logger"
	"github.com/kilianp07/techdispatch/core/model"
	"github.com/kilianp07/techdispatch/core/planner"
	"github.com/kilianp07/techdispatch/core/report"
)

// Planner runs one batch.
type Planner interface {
	Plan(ctx context.Context, b batch.Batch) planner.Outcome
}

// Response is the body of POST /api/schedule.
type Response struct {
	Success     bool               `json:"success"`
	RunID       string             `json:"run_id,omitempty"`
	State       string             `json:"state,omitempty"`
	Errors      []string           `json:"errors,omitempty"`
	Error       string             `json:"error,omitempty"`
	Output      string             `json:"output"`
	Technicians []model.Technician `json:"technicians,omitempty"`
	Jobs        []model.Job        `json:"jobs,omitempty"`
	Summary     *report.Summary    `json:"summary,omitempty"`
}

// Handler serves the schedule API.
type Handler struct {
	planner Planner
	version string
	maxBody int64
	log     logger.Logger
}

// NewHandler creates a handler. maxBody <= 0 leaves request bodies unbounded.
func NewHandler(p Planner, version string, maxBody int64, log logger.Logger) *Handler {
	return &Handler{planner: p, version: version, maxBody: maxBody, log: logger.OrNop(log)}
}

// Root answers GET /.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Technician dispatch API is running",
		"version": h.version,
	})
}

// Health answers GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Schedule answers POST /api/schedule. Validation problems are reported in
// a 200 response with success=false; only unreadable bodies are rejected.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	var b batch.Batch
	dec := json.NewDecoder(body)
	if err := dec.Decode(&b); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, Response{Error: "invalid request body: " + err.Error()})
		return
	}

	out := h.planner.Plan(r.Context(), b)
	if out.Error != "" {
		h.log.Errorf("schedule run %s failed: %s", out.RunID, out.Error)
		writeJSON(w, http.StatusOK, Response{RunID: out.RunID, Error: out.Error, Output: out.Output})
		return
	}
	resp := Response{
		Success:     out.Success,
		RunID:       out.RunID,
		State:       string(out.Result.State),
		Errors:      out.Result.Errors,
		Output:      out.Output,
		Technicians: out.Result.Technicians,
		Jobs:        out.Result.Jobs,
	}
	if out.Result.State.Succeeded() {
		s := out.Summary
		resp.Summary = &s
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
