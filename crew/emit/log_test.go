package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitterText(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, false)

	emitter.Emit(Event{
		RunID:  "run-001",
		Step:   3,
		NodeID: "writer",
		Msg:    "node_complete",
		Meta:   map[string]any{"duration_ms": 42},
	})

	out := buf.String()
	if !strings.HasPrefix(out, "[node_complete]") {
		t.Fatalf("output = %q", out)
	}
	for _, want := range []string{"runID=run-001", "step=3", "nodeID=writer", `"duration_ms":42`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestLogEmitterJSON(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, true)

	emitter.Emit(Event{RunID: "run-001", Step: 1, NodeID: "writer", Msg: "run_start"})

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded["runID"] != "run-001" || decoded["msg"] != "run_start" {
		t.Fatalf("decoded = %v", decoded)
	}
}

func TestNullEmitter(t *testing.T) {
	// Must simply not panic.
	NewNullEmitter().Emit(Event{Msg: "anything"})
}
