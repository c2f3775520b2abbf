// Package storage is the append-only audit journal of board actions.
//
// Task state itself is never persisted; the journal only records what
// happened so the console can show a history.
package storage
