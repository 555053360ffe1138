// Package simulation drives the dispatch engine over simulated hours.
//
// A run moves through Validating and Running into exactly one terminal
// state. The clock starts at hour 0 and jumps to the next moment a busy
// technician frees up; it never moves backwards and never uses wall time.
package simulation
