package app

import (
	"context"

	"github.com/kilianp07/techdispatch/core/events"
	"github.com/kilianp07/techdispatch/infra/logger"
	"github.com/kilianp07/techdispatch/internal/eventbus"
)

// logEvents writes simulation events to the debug log until ctx ends or the
// bus closes.
func logEvents(ctx context.Context, bus eventbus.EventBus, log logger.Logger) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			switch e := ev.(type) {
			case events.AssignmentEvent:
				log.Debugw("assignment", map[string]any{
					"run_id": e.RunID, "job_id": e.JobID, "technician_id": e.TechnicianID,
					"start_hour": e.StartHour, "sla_met": e.SLAMet,
				})
			case events.StallEvent:
				log.Debugw("stalled", map[string]any{"run_id": e.RunID, "hour": e.Hour, "jobs": e.JobIDs})
			case events.RunFinishedEvent:
				log.Debugw("run finished", map[string]any{"run_id": e.RunID, "state": e.State, "ticks": e.Ticks})
			}
		}
	}
}
