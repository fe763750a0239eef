package crew

import (
	"context"
	"fmt"
	"time"

	"github.com/crewgraph/crewgraph-go/crew/emit"
	"github.com/crewgraph/crewgraph-go/crew/store"
)

// EndNode is the routing sentinel that terminates a run. Explicit edge
// configurations may target it directly.
const EndNode = "__end__"

// Snapshot is an immutable view of member completion taken between node
// turns. Edge predicates read only the snapshot, never live team state.
type Snapshot struct {
	Finished map[string]bool
}

// Predicate decides whether a conditional edge fires for a snapshot.
type Predicate func(Snapshot) bool

// finished builds the standard predicate over one member's latch.
func finished(member string) Predicate {
	return func(s Snapshot) bool { return s.Finished[member] }
}

// notFinished inverts finished for explicit reviewer-detour edges.
func notFinished(member string) Predicate {
	return func(s Snapshot) bool { return !s.Finished[member] }
}

// edge routes from one node to another. A nil predicate is unconditional.
// Edges are evaluated in insertion order and the first match wins.
type edge struct {
	to   string
	when Predicate
}

// Workflow is a compiled, executable routing graph over one team's members.
// Reviewed members get a conditional edge that advances once their finished
// latch sets and detours to their reviewer until then; reviewers loop back
// to the member they review, which is what makes the review retry cycle.
type Workflow struct {
	project *Project
	team    *Team

	nodes map[string]*Agent
	edges map[string][]edge

	entry  string
	finish string
	// exit is the node at which a run may terminate: the finish member, or
	// its reviewer when the finish member is reviewed.
	exit string

	// maxSteps caps total node turns. Zero means unbounded, leaving the
	// review loop free to run until a verdict passes.
	maxSteps int

	emitter emit.Emitter
	st      store.Store[TeamState]
}

// WorkflowOption configures a compiled workflow.
type WorkflowOption func(*Workflow)

// WithMaxSteps caps the number of node turns in one run. A run exceeding
// the cap fails with CodeMaxStepsExceeded. Zero leaves the run unbounded.
func WithMaxSteps(n int) WorkflowOption {
	return func(w *Workflow) { w.maxSteps = n }
}

// WithEmitter routes run observability events to e.
func WithEmitter(e emit.Emitter) WorkflowOption {
	return func(w *Workflow) { w.emitter = e }
}

// WithStore persists a team state snapshot after every node turn.
func WithStore(s store.Store[TeamState]) WorkflowOption {
	return func(w *Workflow) { w.st = s }
}

// CompileWorkflow builds the executable graph for team from its configured
// graph spec. Project may be nil for standalone team runs.
func CompileWorkflow(project *Project, team *Team, opts ...WorkflowOption) (*Workflow, error) {
	graph := team.Config.Graph

	w := &Workflow{
		project: project,
		team:    team,
		nodes:   make(map[string]*Agent, len(team.Members)),
		edges:   make(map[string][]edge),
		entry:   graph.Entry,
		finish:  graph.Finish,
		emitter: &emit.NullEmitter{},
	}
	for _, m := range team.Members {
		w.nodes[m.Name] = m
	}

	if _, ok := w.nodes[w.entry]; !ok {
		return nil, &WorkflowError{
			Message: fmt.Sprintf("entry node %q is not a member of team %q", w.entry, team.Name),
			Code:    CodeNoEntryNode,
		}
	}
	if _, ok := w.nodes[w.finish]; !ok {
		return nil, &WorkflowError{
			Message: fmt.Sprintf("finish node %q is not a member of team %q", w.finish, team.Name),
			Code:    CodeNodeNotFound,
		}
	}

	w.exit = w.finish
	if reviewer := team.ReviewerName(w.finish); reviewer != "" {
		w.exit = reviewer
	}

	var err error
	if len(graph.Edges) > 0 {
		err = w.compileExplicit(graph.Edges)
	} else {
		err = w.compileChain(graph.EdgeOrder)
	}
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// compileChain derives edges from a linear member order. For a reviewed
// member the advance edge is conditional on its latch; the fallback routes
// to its reviewer, and the reviewer routes back unconditionally.
func (w *Workflow) compileChain(order []string) error {
	if len(order) == 0 {
		return &WorkflowError{
			Message: fmt.Sprintf("team %q graph has neither edges nor an edge order", w.team.Name),
			Code:    CodeNoRoute,
		}
	}
	for i, member := range order {
		if _, ok := w.nodes[member]; !ok {
			return &WorkflowError{
				Message: fmt.Sprintf("edge order names unknown member %q", member),
				Code:    CodeNodeNotFound,
			}
		}
		next := EndNode
		if i+1 < len(order) {
			next = order[i+1]
		}
		reviewer := w.team.ReviewerName(member)
		if reviewer == "" {
			w.edges[member] = append(w.edges[member], edge{to: next})
			continue
		}
		w.edges[member] = append(w.edges[member],
			edge{to: next, when: finished(member)},
			edge{to: reviewer},
		)
		w.edges[reviewer] = append(w.edges[reviewer], edge{to: member})
	}
	return nil
}

// compileExplicit wires configured (from, to) pairs. A pair leaving a
// reviewed member is made conditional on that member's latch: the edge to
// its own reviewer fires while unfinished, any other edge once finished.
// All other pairs are unconditional.
func (w *Workflow) compileExplicit(pairs [][2]string) error {
	for _, pair := range pairs {
		from, to := pair[0], pair[1]
		if _, ok := w.nodes[from]; !ok {
			return &WorkflowError{
				Message: fmt.Sprintf("edge from unknown node %q", from),
				Code:    CodeNodeNotFound,
			}
		}
		if to != EndNode {
			if _, ok := w.nodes[to]; !ok {
				return &WorkflowError{
					Message: fmt.Sprintf("edge to unknown node %q", to),
					Code:    CodeNodeNotFound,
				}
			}
		}
		var when Predicate
		if reviewer := w.team.ReviewerName(from); reviewer != "" {
			if to == reviewer {
				when = notFinished(from)
			} else {
				when = finished(from)
			}
		}
		w.edges[from] = append(w.edges[from], edge{to: to, when: when})
	}
	return nil
}

// snapshot freezes member completion for predicate evaluation.
func (w *Workflow) snapshot() Snapshot {
	done := make(map[string]bool, len(w.team.MembersFinished))
	for _, name := range w.team.MembersFinished {
		done[name] = true
	}
	return Snapshot{Finished: done}
}

// route picks the next node from current. The first edge whose predicate
// passes (or that has none) wins.
func (w *Workflow) route(current string, snap Snapshot) (string, bool) {
	for _, e := range w.edges[current] {
		if e.when == nil || e.when(snap) {
			return e.to, true
		}
	}
	return "", false
}

// Run drives the workflow from the entry node until it reaches the end
// sentinel or the exit node with the finish member latched. Each node turn
// invokes one agent, refreshes team and project views, persists a state
// snapshot when a store is configured, and emits an observability event.
func (w *Workflow) Run(ctx context.Context, runID string) error {
	w.emitter.Emit(emit.Event{RunID: runID, Msg: "run_start", Meta: map[string]any{
		"team": w.team.Name, "entry": w.entry, "exit": w.exit,
	}})

	current := w.entry
	for step := 1; ; step++ {
		if w.maxSteps > 0 && step > w.maxSteps {
			err := &WorkflowError{
				Message: fmt.Sprintf("run %q exceeded %d steps", runID, w.maxSteps),
				Code:    CodeMaxStepsExceeded,
			}
			w.emitRunError(runID, step, current, err)
			return err
		}
		if err := ctx.Err(); err != nil {
			w.emitRunError(runID, step, current, err)
			return err
		}

		agent, ok := w.nodes[current]
		if !ok {
			err := &WorkflowError{
				Message: fmt.Sprintf("routing reached unknown node %q", current),
				Code:    CodeNodeNotFound,
			}
			w.emitRunError(runID, step, current, err)
			return err
		}

		start := time.Now()
		if err := agent.Invoke(ctx, w.project, w.team); err != nil {
			w.emitRunError(runID, step, current, err)
			return err
		}
		w.team.metrics.RecordStep(w.team.Name, current, time.Since(start))

		w.team.Update()
		if w.project != nil {
			w.project.Update()
		}

		if w.st != nil {
			if err := w.st.SaveStep(ctx, runID, step, current, w.team.State()); err != nil {
				wrapped := &WorkflowError{
					Message: fmt.Sprintf("persisting step %d: %v", step, err),
					Code:    CodeStoreError,
				}
				w.emitRunError(runID, step, current, wrapped)
				return wrapped
			}
		}

		w.emitter.Emit(emit.Event{RunID: runID, Step: step, NodeID: current, Msg: "node_complete", Meta: map[string]any{
			"duration_ms":      time.Since(start).Milliseconds(),
			"members_finished": len(w.team.MembersFinished),
		}})

		if current == w.exit && w.team.CheckFinished(w.finish) {
			w.emitRunComplete(runID, step, current)
			return nil
		}

		next, ok := w.route(current, w.snapshot())
		if !ok {
			err := &WorkflowError{
				Message: fmt.Sprintf("no edge matched from node %q", current),
				Code:    CodeNoRoute,
			}
			w.emitRunError(runID, step, current, err)
			return err
		}
		if next == EndNode {
			w.emitRunComplete(runID, step, current)
			return nil
		}
		current = next
	}
}

// RunTeamWorkflow compiles and runs the workflow of the project team built
// from the named catalog entry. The team adopts the project goal before the
// run starts.
func RunTeamWorkflow(ctx context.Context, project *Project, teamConfig, runID string, opts ...WorkflowOption) error {
	team := project.Team(teamConfig)
	if team == nil {
		return &ConfigError{Entity: "project", Name: project.Name, Reason: fmt.Sprintf("no team built from entry %q", teamConfig)}
	}
	team.Goal = project.Goal
	w, err := CompileWorkflow(project, team, opts...)
	if err != nil {
		return err
	}
	return w.Run(ctx, runID)
}

func (w *Workflow) emitRunComplete(runID string, step int, node string) {
	w.emitter.Emit(emit.Event{RunID: runID, Step: step, NodeID: node, Msg: "run_complete", Meta: map[string]any{
		"final_answers": len(w.team.FinalAnswers),
	}})
}

func (w *Workflow) emitRunError(runID string, step int, node string, err error) {
	w.emitter.Emit(emit.Event{RunID: runID, Step: step, NodeID: node, Msg: "run_error", Meta: map[string]any{
		"error": err.Error(),
	}})
}
