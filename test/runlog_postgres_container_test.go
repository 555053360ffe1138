//go:build !no_containers

package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/techdispatch/core/dispatch/logging"
	"github.com/kilianp07/techdispatch/core/factory"
	"github.com/kilianp07/techdispatch/core/model"
	"github.com/kilianp07/techdispatch/test/util"
)

func TestPostgresRunLogContainer(t *testing.T) {
	requireDocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dsn, cleanup, err := util.StartPostgres(ctx)
	if err != nil {
		t.Skipf("postgres: %v", err)
	}
	defer cleanup()

	store, err := logging.NewStore(factory.ModuleConfig{Type: "postgres", Conf: map[string]any{"dsn": dsn}})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	recs := []logging.RunRecord{
		{RunID: "a", Timestamp: base, State: "complete", OK: true,
			Technicians: []model.Technician{{ID: 1, Skills: []string{"hvac"}}},
			Jobs:        []model.Job{{ID: 10, RequiredSkills: []string{"hvac"}, Priority: model.PriorityUrgent, EstimatedHours: 1}}},
		{RunID: "b", Timestamp: base.Add(time.Hour), State: "aborted", Errors: []string{"ERROR: No jobs provided"},
			Technicians: []model.Technician{{ID: 2, Skills: []string{"plumbing"}}}},
		{RunID: "c", Timestamp: base.Add(2 * time.Hour), State: "complete", OK: true, FinalHour: 4,
			Technicians: []model.Technician{{ID: 1, Skills: []string{"hvac"}}}},
	}
	for _, r := range recs {
		require.NoError(t, store.Append(ctx, r))
	}

	all, err := store.Query(ctx, logging.RunQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].RunID)

	complete, err := store.Query(ctx, logging.RunQuery{State: "complete"})
	require.NoError(t, err)
	assert.Len(t, complete, 2)

	tech := 2
	byTech, err := store.Query(ctx, logging.RunQuery{TechnicianID: &tech})
	require.NoError(t, err)
	require.Len(t, byTech, 1)
	assert.Equal(t, []string{"ERROR: No jobs provided"}, byTech[0].Errors)

	window, err := store.Query(ctx, logging.RunQuery{Start: base.Add(30 * time.Minute), Limit: 1})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "b", window[0].RunID)
}
