// Package store persists workflow state snapshots between node turns so a
// run's progress can be inspected or resumed after the process exits.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested run ID or checkpoint ID does
// not exist.
var ErrNotFound = errors.New("not found")

// Store persists per-step state and named checkpoints for workflow runs.
//
// Type parameter S is the state type to persist and must be
// JSON-serializable. Implementations in this package: MemStore for tests
// and single-process use, SQLiteStore for zero-setup file persistence,
// MySQLStore for shared deployments.
type Store[S any] interface {
	// SaveStep persists the state after one node turn. Steps are keyed by
	// runID plus the 1-indexed step number; saving the same key again
	// replaces the previous record.
	SaveStep(ctx context.Context, runID string, step int, nodeID string, state S) error

	// LoadLatest retrieves the highest-numbered step for a run. Returns
	// ErrNotFound when the run has no saved steps.
	LoadLatest(ctx context.Context, runID string) (state S, step int, err error)

	// SaveCheckpoint stores a named snapshot for manual resumption.
	SaveCheckpoint(ctx context.Context, cpID string, state S, step int) error

	// LoadCheckpoint retrieves a named snapshot. Returns ErrNotFound for
	// unknown checkpoint IDs.
	LoadCheckpoint(ctx context.Context, cpID string) (state S, step int, err error)
}
