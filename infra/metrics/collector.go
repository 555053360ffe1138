package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/techdispatch/core/events"
	coremetrics "github.com/kilianp07/techdispatch/core/metrics"
	"github.com/kilianp07/techdispatch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards assignment
// events to sinks implementing AssignmentRecorder. It stops when the context
// is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.AssignmentRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if e, ok := ev.(events.AssignmentEvent); ok {
					_ = rec.RecordAssignments([]coremetrics.AssignmentEvent{{
						RunID:        e.RunID,
						JobID:        e.JobID,
						TechnicianID: e.TechnicianID,
						Priority:     e.Priority,
						StartHour:    e.StartHour,
						Response:     e.Response,
						SLAMet:       e.SLAMet,
						Time:         time.Now(),
					}})
				}
			}
		}
	}()
}
