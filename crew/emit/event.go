// Package emit defines the observability event stream emitted while a
// workflow run executes.
package emit

// Event is one observability record from a workflow run: an agent turn
// completing, a run starting or terminating, or a failure.
type Event struct {
	// RunID identifies the workflow run that emitted this event.
	RunID string

	// Step is the 1-indexed node turn within the run. Zero for run-level
	// events.
	Step int

	// NodeID names the agent node the event concerns. Empty for run-level
	// events.
	NodeID string

	// Msg is the event kind: "run_start", "node_complete", "run_complete"
	// or "run_error".
	Msg string

	// Meta carries event-specific structured data. Common keys:
	//   - "duration_ms": agent turn duration
	//   - "members_finished": count of latched team members
	//   - "error": failure details
	Meta map[string]any
}
