package crew

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/crewgraph/crewgraph-go/crew/model"
)

func TestAgentOneInvokeLatch(t *testing.T) {
	mock := newMock(textResponse("the answer"))
	agent, err := NewAgent("drafter", "drafter", testCatalog(), model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	if err := agent.Invoke(context.Background(), nil, nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !agent.Finished {
		t.Fatal("agent without review requirement should latch after one invoke")
	}
	if agent.FinalAnswer == nil || agent.FinalAnswer.String() != "the answer" {
		t.Fatalf("FinalAnswer = %v, want %q", agent.FinalAnswer, "the answer")
	}
	if got := mock.CallCount(); got != 1 {
		t.Fatalf("model calls = %d, want 1", got)
	}

	t.Run("idempotent once finished", func(t *testing.T) {
		if err := agent.Invoke(context.Background(), nil, nil); err != nil {
			t.Fatalf("Invoke: %v", err)
		}
		if got := mock.CallCount(); got != 1 {
			t.Fatalf("model calls after replay = %d, want 1", got)
		}
		if agent.FinalAnswer.String() != "the answer" {
			t.Fatalf("FinalAnswer changed to %q", agent.FinalAnswer.String())
		}
	})
}

func TestAgentReviewLatch(t *testing.T) {
	mock := newMock(textResponse("draft one"), textResponse("draft two"))
	agent, err := NewAgent("writer", "writer", testCatalog(), model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	ctx := context.Background()

	if err := agent.Invoke(ctx, nil, nil); err != nil {
		t.Fatalf("first Invoke: %v", err)
	}
	if agent.Finished {
		t.Fatal("reviewed agent must not latch without a passing verdict")
	}

	agent.Inputs.Add(StructuredMessage(map[string]any{"pass_review": false, "suggestions": "tighten it"}))
	if err := agent.Invoke(ctx, nil, nil); err != nil {
		t.Fatalf("second Invoke: %v", err)
	}
	if agent.Finished {
		t.Fatal("failing verdict must not latch the agent")
	}
	if got := mock.CallCount(); got != 2 {
		t.Fatalf("model calls = %d, want 2", got)
	}

	agent.Inputs.Add(StructuredMessage(map[string]any{"pass_review": true}))
	if err := agent.Invoke(ctx, nil, nil); err != nil {
		t.Fatalf("latching Invoke: %v", err)
	}
	if !agent.Finished {
		t.Fatal("passing verdict should latch on the next invoke")
	}
	if got := mock.CallCount(); got != 2 {
		t.Fatalf("latching invoke must not call the model, calls = %d", got)
	}
	if agent.FinalAnswer.String() != "draft two" {
		t.Fatalf("FinalAnswer = %q, want %q", agent.FinalAnswer.String(), "draft two")
	}
}

func TestAgentPromptRendering(t *testing.T) {
	cat := testCatalog()
	mock := newMock(textResponse("ok"))
	team, err := NewTeam("solo", cat, model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewTeam: %v", err)
	}
	team.Goal = "write a haiku about tides"

	writer := team.Member("writer")
	if err := writer.Invoke(context.Background(), nil, team); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	prompts := mock.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("prompts recorded = %d, want 1", len(prompts))
	}
	if !strings.Contains(prompts[0], "write a haiku about tides") {
		t.Errorf("prompt missing team goal:\n%s", prompts[0])
	}
	if !strings.Contains(prompts[0], "None") {
		t.Errorf("empty feedback should render as None:\n%s", prompts[0])
	}
	if strings.Contains(prompts[0], "{self_") {
		t.Errorf("prompt contains unsubstituted placeholder:\n%s", prompts[0])
	}
}

func TestAgentModelError(t *testing.T) {
	mock := &model.Mock{Err: errors.New("rate limit")}
	agent, err := NewAgent("drafter", "drafter", testCatalog(), model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	err = agent.Invoke(context.Background(), nil, nil)
	if err == nil {
		t.Fatal("expected model error to surface")
	}
	if !strings.Contains(err.Error(), "rate limit") {
		t.Fatalf("error %q does not carry the cause", err)
	}
	if agent.Finished {
		t.Fatal("failed invoke must not latch")
	}
}

func TestAgentUnknownConfig(t *testing.T) {
	_, err := NewAgent("ghost", "ghost", testCatalog(), model.MockFactory(newMock()), nil)
	if err == nil {
		t.Fatal("expected error for unknown agent entry")
	}
}

func TestReviewerFetchesSubmission(t *testing.T) {
	cat := testCatalog()
	mock := newMock(textResponse("submission"), reviewResponse(false, "needs sources"))
	team, err := NewTeam("solo", cat, model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewTeam: %v", err)
	}
	ctx := context.Background()

	if err := team.Member("writer").Invoke(ctx, nil, team); err != nil {
		t.Fatalf("writer Invoke: %v", err)
	}
	team.Update()

	reviewer := team.Member("writer" + ReviewerSuffix)
	if reviewer == nil {
		t.Fatal("reviewer was not assembled")
	}
	if err := reviewer.Invoke(ctx, nil, team); err != nil {
		t.Fatalf("reviewer Invoke: %v", err)
	}

	fetched, ok := reviewer.Inputs.LastMessage()
	if !ok || fetched.String() != "submission" {
		t.Fatalf("reviewer inputs = %v, want the writer submission", fetched)
	}
	prompts := mock.Prompts()
	if !strings.Contains(prompts[len(prompts)-1], "submission") {
		t.Errorf("reviewer prompt missing submission:\n%s", prompts[len(prompts)-1])
	}
}

func TestReviewerWithoutSubmission(t *testing.T) {
	cat := testCatalog()
	mock := newMock(reviewResponse(false, "nothing to review"))
	team, err := NewTeam("solo", cat, model.MockFactory(mock), nil)
	if err != nil {
		t.Fatalf("NewTeam: %v", err)
	}

	reviewer := team.Member("writer" + ReviewerSuffix)
	if err := reviewer.Invoke(context.Background(), nil, team); err != nil {
		t.Fatalf("Invoke without submission should soft-fail, got %v", err)
	}
	if reviewer.Inputs.Len() != 0 {
		t.Fatal("no submission should have been fetched")
	}
}
