// Package board holds the scheduling rules of the repair board:
//   - the date axis of the visible window
//   - deriving a job's end date from its start and estimated effort
//   - the task store and its field-level edit validation
//   - the search/sort projection
//   - placing a job's bar and deadline marker on the axis
//
// Everything here is synchronous and free of I/O; package session
// serializes access to a Store.
package board
