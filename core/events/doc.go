// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - TickEvent: one dispatch evaluation at a simulated hour
//   - AssignmentEvent: a job was given to a technician
//   - StallEvent: remaining jobs can never be served
//   - RunFinishedEvent: a run reached a terminal state
package events
