package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	st, err := NewSQLiteStore[runState](path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer st.Close()

	if err := st.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	t.Run("steps", func(t *testing.T) {
		if _, _, err := st.LoadLatest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if err := st.SaveStep(ctx, "run-1", 1, "writer", runState{Team: "alpha"}); err != nil {
			t.Fatalf("SaveStep: %v", err)
		}
		if err := st.SaveStep(ctx, "run-1", 2, "reviewer", runState{Team: "alpha", Finished: []string{"writer"}}); err != nil {
			t.Fatalf("SaveStep: %v", err)
		}

		state, step, err := st.LoadLatest(ctx, "run-1")
		if err != nil {
			t.Fatalf("LoadLatest: %v", err)
		}
		if step != 2 || len(state.Finished) != 1 {
			t.Fatalf("latest = step %d, state %+v", step, state)
		}

		// Same step saved again replaces the record.
		if err := st.SaveStep(ctx, "run-1", 2, "reviewer", runState{Team: "beta"}); err != nil {
			t.Fatalf("SaveStep: %v", err)
		}
		state, _, err = st.LoadLatest(ctx, "run-1")
		if err != nil || state.Team != "beta" {
			t.Fatalf("state = %+v, err %v", state, err)
		}
	})

	t.Run("checkpoints", func(t *testing.T) {
		if _, _, err := st.LoadCheckpoint(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if err := st.SaveCheckpoint(ctx, "cp-1", runState{Team: "alpha"}, 5); err != nil {
			t.Fatalf("SaveCheckpoint: %v", err)
		}
		state, step, err := st.LoadCheckpoint(ctx, "cp-1")
		if err != nil || step != 5 || state.Team != "alpha" {
			t.Fatalf("checkpoint = step %d, state %+v, err %v", step, state, err)
		}
	})

	t.Run("closed store errors", func(t *testing.T) {
		closed, err := NewSQLiteStore[runState](filepath.Join(t.TempDir(), "closed.db"))
		if err != nil {
			t.Fatalf("NewSQLiteStore: %v", err)
		}
		if err := closed.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if err := closed.SaveStep(ctx, "run", 1, "n", runState{}); err == nil {
			t.Fatal("expected error on closed store")
		}
	})
}
