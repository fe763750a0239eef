package store

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store implementation. State is copied by value
// on save and load, which is sufficient isolation for the JSON-shaped
// snapshot types this package persists. Safe for concurrent use.
type MemStore[S any] struct {
	mu          sync.RWMutex
	steps       map[string][]stepRecord[S]
	checkpoints map[string]checkpointRecord[S]
}

type stepRecord[S any] struct {
	step   int
	nodeID string
	state  S
}

type checkpointRecord[S any] struct {
	state S
	step  int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore[S any]() *MemStore[S] {
	return &MemStore[S]{
		steps:       make(map[string][]stepRecord[S]),
		checkpoints: make(map[string]checkpointRecord[S]),
	}
}

// SaveStep appends or replaces the record for (runID, step).
func (m *MemStore[S]) SaveStep(_ context.Context, runID string, step int, nodeID string, state S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.steps[runID]
	for i, r := range records {
		if r.step == step {
			records[i] = stepRecord[S]{step: step, nodeID: nodeID, state: state}
			return nil
		}
	}
	m.steps[runID] = append(records, stepRecord[S]{step: step, nodeID: nodeID, state: state})
	return nil
}

// LoadLatest returns the highest-numbered step saved for runID.
func (m *MemStore[S]) LoadLatest(_ context.Context, runID string) (S, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := m.steps[runID]
	if len(records) == 0 {
		var zero S
		return zero, 0, ErrNotFound
	}
	latest := records[0]
	for _, r := range records[1:] {
		if r.step > latest.step {
			latest = r
		}
	}
	return latest.state, latest.step, nil
}

// SaveCheckpoint stores a named snapshot, replacing any previous snapshot
// under the same ID.
func (m *MemStore[S]) SaveCheckpoint(_ context.Context, cpID string, state S, step int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[cpID] = checkpointRecord[S]{state: state, step: step}
	return nil
}

// LoadCheckpoint retrieves a named snapshot.
func (m *MemStore[S]) LoadCheckpoint(_ context.Context, cpID string) (S, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.checkpoints[cpID]
	if !ok {
		var zero S
		return zero, 0, ErrNotFound
	}
	return record.state, record.step, nil
}

// StepCount reports how many steps are stored for a run.
func (m *MemStore[S]) StepCount(runID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.steps[runID])
}
