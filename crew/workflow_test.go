package crew

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/crewgraph/crewgraph-go/crew/catalog"
	"github.com/crewgraph/crewgraph-go/crew/emit"
	"github.com/crewgraph/crewgraph-go/crew/model"
	"github.com/crewgraph/crewgraph-go/crew/store"
)

// captureEmitter records events for assertions.
type captureEmitter struct {
	mu     sync.Mutex
	events []emit.Event
}

func (c *captureEmitter) Emit(event emit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureEmitter) all() []emit.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]emit.Event(nil), c.events...)
}

func TestWorkflowLinearRun(t *testing.T) {
	mock := newMock(textResponse("draft"), textResponse("final"))
	project, err := NewProject("pipeline", "write it", testCatalog(), model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}

	if err := RunTeamWorkflow(context.Background(), project, "pipeline", "run-linear"); err != nil {
		t.Fatalf("RunTeamWorkflow: %v", err)
	}

	if got := mock.CallCount(); got != 2 {
		t.Fatalf("model calls = %d, want exactly 2", got)
	}
	team := project.Team("pipeline")
	if !team.CheckFinished("drafter") || !team.CheckFinished("closer") {
		t.Fatalf("members finished = %v", team.MembersFinished)
	}
	if team.FinalAnswers["drafter"].String() != "draft" || team.FinalAnswers["closer"].String() != "final" {
		t.Fatalf("final answers = %v", team.FinalAnswers)
	}
	if _, ok := project.FinalAnswers[team.Name]; !ok {
		t.Fatal("project did not aggregate team final answers")
	}
}

func TestWorkflowReviewLoop(t *testing.T) {
	mock := newMock(
		textResponse("draft one"),
		reviewResponse(false, "cite sources"),
		textResponse("draft two"),
		reviewResponse(true, ""),
	)
	project, err := NewProject("solo", "write it", testCatalog(), model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}

	if err := RunTeamWorkflow(context.Background(), project, "solo", "run-review"); err != nil {
		t.Fatalf("RunTeamWorkflow: %v", err)
	}

	if got := mock.CallCount(); got != 4 {
		t.Fatalf("model calls = %d, want 4 (two drafts, two verdicts)", got)
	}
	team := project.Team("solo")
	writer := team.Member("writer")
	if !writer.Finished {
		t.Fatal("writer should have latched after the passing verdict")
	}
	if writer.FinalAnswer.String() != "draft two" {
		t.Fatalf("final answer = %q, want the reviewed draft", writer.FinalAnswer.String())
	}
	if !team.CheckFinished("writer") {
		t.Fatal("team should record the writer latch")
	}
}

func TestWorkflowMaxSteps(t *testing.T) {
	// The script never passes review, so the member/reviewer pair
	// alternates until the cap trips.
	mock := newMock(textResponse("draft"), reviewResponse(false, "again"))
	project, err := NewProject("solo", "write it", testCatalog(), model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}

	err = RunTeamWorkflow(context.Background(), project, "solo", "run-capped", WithMaxSteps(6))
	var wfErr *WorkflowError
	if !errors.As(err, &wfErr) || wfErr.Code != CodeMaxStepsExceeded {
		t.Fatalf("err = %v, want %s", err, CodeMaxStepsExceeded)
	}
}

func TestWorkflowPersistsSteps(t *testing.T) {
	mock := newMock(textResponse("draft"), textResponse("final"))
	project, err := NewProject("pipeline", "write it", testCatalog(), model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	st := store.NewMemStore[TeamState]()

	if err := RunTeamWorkflow(context.Background(), project, "pipeline", "run-store", WithStore(st)); err != nil {
		t.Fatalf("RunTeamWorkflow: %v", err)
	}

	if got := st.StepCount("run-store"); got != 2 {
		t.Fatalf("persisted steps = %d, want 2", got)
	}
	state, step, err := st.LoadLatest(context.Background(), "run-store")
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if step != 2 {
		t.Fatalf("latest step = %d, want 2", step)
	}
	if len(state.MembersFinished) != 2 {
		t.Fatalf("latest state members finished = %v", state.MembersFinished)
	}
}

func TestWorkflowEmitsEvents(t *testing.T) {
	mock := newMock(textResponse("draft"), textResponse("final"))
	project, err := NewProject("pipeline", "write it", testCatalog(), model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	capture := &captureEmitter{}

	if err := RunTeamWorkflow(context.Background(), project, "pipeline", "run-events", WithEmitter(capture)); err != nil {
		t.Fatalf("RunTeamWorkflow: %v", err)
	}

	events := capture.all()
	if len(events) < 3 {
		t.Fatalf("events = %d, want run_start, node turns, run_complete", len(events))
	}
	if events[0].Msg != "run_start" {
		t.Fatalf("first event = %q", events[0].Msg)
	}
	if last := events[len(events)-1]; last.Msg != "run_complete" {
		t.Fatalf("last event = %q", last.Msg)
	}
	var nodeEvents int
	for _, e := range events {
		if e.Msg == "node_complete" {
			nodeEvents++
		}
	}
	if nodeEvents != 2 {
		t.Fatalf("node_complete events = %d, want 2", nodeEvents)
	}
}

func TestWorkflowContextCancellation(t *testing.T) {
	mock := newMock(textResponse("draft"))
	project, err := NewProject("pipeline", "write it", testCatalog(), model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = RunTeamWorkflow(ctx, project, "pipeline", "run-cancelled")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCompileWorkflowErrors(t *testing.T) {
	cat := testCatalog()
	factory := model.MockFactory(newMock())

	t.Run("unknown entry node", func(t *testing.T) {
		team, err := NewTeam("pipeline", cat, factory, nil)
		if err != nil {
			t.Fatalf("NewTeam: %v", err)
		}
		team.Config.Graph.Entry = "ghost"
		_, err = CompileWorkflow(nil, team)
		var wfErr *WorkflowError
		if !errors.As(err, &wfErr) || wfErr.Code != CodeNoEntryNode {
			t.Fatalf("err = %v, want %s", err, CodeNoEntryNode)
		}
	})

	t.Run("unknown finish node", func(t *testing.T) {
		team, err := NewTeam("pipeline", cat, factory, nil)
		if err != nil {
			t.Fatalf("NewTeam: %v", err)
		}
		team.Config.Graph.Finish = "ghost"
		_, err = CompileWorkflow(nil, team)
		var wfErr *WorkflowError
		if !errors.As(err, &wfErr) || wfErr.Code != CodeNodeNotFound {
			t.Fatalf("err = %v, want %s", err, CodeNodeNotFound)
		}
	})

	t.Run("empty graph spec", func(t *testing.T) {
		team, err := NewTeam("pipeline", cat, factory, nil)
		if err != nil {
			t.Fatalf("NewTeam: %v", err)
		}
		team.Config.Graph.EdgeOrder = nil
		_, err = CompileWorkflow(nil, team)
		var wfErr *WorkflowError
		if !errors.As(err, &wfErr) || wfErr.Code != CodeNoRoute {
			t.Fatalf("err = %v, want %s", err, CodeNoRoute)
		}
	})
}

func TestWorkflowExplicitEdges(t *testing.T) {
	cat := testCatalog()
	spec := cat.Teams["solo"]
	spec.Graph = catalog.GraphSpec{
		Entry:  "writer",
		Finish: "writer",
		Edges: [][2]string{
			{"writer", "writer" + ReviewerSuffix},
			{"writer" + ReviewerSuffix, "writer"},
			{"writer", EndNode},
		},
	}
	cat.Teams["solo"] = spec

	mock := newMock(
		textResponse("draft one"),
		reviewResponse(false, "again"),
		textResponse("draft two"),
		reviewResponse(true, ""),
	)
	project, err := NewProject("solo", "write it", cat, model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}

	if err := RunTeamWorkflow(context.Background(), project, "solo", "run-explicit"); err != nil {
		t.Fatalf("RunTeamWorkflow: %v", err)
	}
	if got := mock.CallCount(); got != 4 {
		t.Fatalf("model calls = %d, want 4", got)
	}
	if !project.Team("solo").CheckFinished("writer") {
		t.Fatal("writer should be finished")
	}
}
