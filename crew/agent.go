package crew

import (
	"context"
	"fmt"

	"github.com/crewgraph/crewgraph-go/crew/catalog"
	"github.com/crewgraph/crewgraph-go/crew/model"
)

// Agent wraps one model capability with the state needed to take turns in a
// team workflow: a task, message logs for received feedback and produced
// responses, and a one-way finished latch. Agents do not hold references to
// their team or project; both are passed into Invoke explicitly.
type Agent struct {
	// Name is unique within a team. Reviewer agents are named after the
	// member they review with a "_reviewer" suffix.
	Name string

	// ConfigName is the catalog entry this agent was built from. It differs
	// from Name for reviewers, which share the "reviewer" entry.
	ConfigName string

	Config catalog.AgentSpec

	Task *Task

	// Teammates holds the names of the other members on this agent's team,
	// filled in when the team requests introductions.
	Teammates []string

	// ReviewerFor names the base member this agent reviews, or "" when the
	// agent is not a reviewer.
	ReviewerFor string

	// Inputs receives feedback addressed to this agent, most importantly
	// review verdicts. Outputs collects every response the agent produces.
	Inputs  *MessageLog
	Outputs *MessageLog

	// FinalAnswer is captured once when the finished latch sets and is
	// immutable afterwards.
	FinalAnswer *Message

	// Status maps the agent name to its latest lifecycle status string.
	Status map[string]string

	// Finished is a one-way latch. Once true the agent stops invoking its
	// model and replays its cached final answer.
	Finished bool

	Log *Log

	client  model.Client
	metrics *Metrics
}

// Agent lifecycle statuses.
const (
	StatusInitialized = "initialized"
	StatusInvoked     = "invoked"
	StatusResponded   = "responded"
	StatusFinished    = "finished"
)

// NewAgent builds an agent from the named catalog entry. The agent's task
// objective is looked up by agent name, falling back to the catalog default,
// so reviewer agents carry the default objective unless a task is keyed to
// their full name.
func NewAgent(name, configName string, cat *catalog.Catalog, factory model.Factory, metrics *Metrics) (*Agent, error) {
	spec, err := cat.Agent(configName)
	if err != nil {
		return nil, err
	}

	modelName, err := model.Resolve(spec.Model.API, spec.Model.Size)
	if err != nil {
		return nil, &ConfigError{Entity: "agent", Name: name, Reason: err.Error()}
	}
	client, err := factory(spec.Model.API, model.Config{
		Model:          modelName,
		Temperature:    spec.Params.Temperature,
		TopP:           spec.Params.TopP,
		Seed:           spec.Params.Seed,
		MaxTokens:      spec.Params.MaxTokens,
		MaxRetries:     spec.Params.MaxRetries,
		Timeout:        spec.Params.Timeout,
		ResponseFormat: spec.Params.ResponseFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("agent %q: building model client: %w", name, err)
	}

	a := &Agent{
		Name:       name,
		ConfigName: configName,
		Config:     spec,
		Task:       NewTask(name, cat.Tasks),
		Inputs:     NewMessageLog(),
		Outputs:    NewMessageLog(),
		Status:     map[string]string{name: StatusInitialized},
		Log:        NewLog(Target{Type: "Agent", Name: name}),
		client:     client,
		metrics:    metrics,
	}
	a.Task.Assign(name)
	return a, nil
}

func (a *Agent) target() Target {
	return Target{Type: "Agent", Name: a.Name}
}

func (a *Agent) logEvent(desc string) {
	a.Log.Add(a.target(), desc)
}

func (a *Agent) setStatus(status string) {
	a.Status[a.Name] = status
	a.logEvent("status: " + status)
}

// Invoke runs one turn: latch checks first, then review-content fetch for
// reviewer agents, prompt formatting, the model call, and response capture.
// Team and project supply shared context and may be nil for standalone use.
//
// A finished agent never reaches the model again; it replays its cached
// final answer. An agent whose latest input carries a passing review verdict
// latches finished on this turn without a model call.
func (a *Agent) Invoke(ctx context.Context, project *Project, team *Team) error {
	if a.Finished {
		a.logEvent("replayed final answer")
		a.metrics.RecordInvocation(a.Name, "replayed")
		return nil
	}
	if a.checkFinished(team) {
		a.metrics.RecordInvocation(a.Name, "replayed")
		return nil
	}

	a.fetchContentForReview(team)
	a.setStatus(StatusInvoked)

	prompt, err := a.formatPrompt(project, team)
	if err != nil {
		a.metrics.RecordInvocation(a.Name, "error")
		return err
	}

	resp, err := a.client.Invoke(ctx, prompt)
	if err != nil {
		a.metrics.RecordInvocation(a.Name, "error")
		a.logEvent("model invocation failed: " + err.Error())
		return fmt.Errorf("agent %q: model invocation: %w", a.Name, err)
	}

	msg := ParseResponse(resp.Content, a.Config.Params.ResponseFormat)
	a.Outputs.Add(msg)
	a.logEvent("message: " + msg.String())
	a.logEvent("tokens: " + resp.Usage.JSON())
	a.setStatus(StatusResponded)
	a.metrics.RecordInvocation(a.Name, "ok")
	a.metrics.RecordTokens(a.Name, resp.Usage.Input, resp.Usage.Output)

	if !a.Config.NeedsReview {
		a.latchFinished(team)
	}
	return nil
}

// checkFinished latches the finished flag when the latest input carries a
// passing review verdict. A missing or failing verdict is normal flow.
func (a *Agent) checkFinished(team *Team) bool {
	entry, ok := a.Inputs.Last()
	if !ok || !entry.Message.PassReview() {
		return false
	}
	a.logEvent("review passed")
	a.latchFinished(team)
	return true
}

// latchFinished captures the final answer and reports completion to the
// team. Safe to call only while the latch is unset.
func (a *Agent) latchFinished(team *Team) {
	last, _ := a.Outputs.LastMessage()
	a.FinalAnswer = &last
	a.Finished = true
	a.Task.SetFinished()
	a.setStatus(StatusFinished)
	if team != nil {
		team.MarkFinished(a.Name)
	}
}

// fetchContentForReview pulls the reviewed member's latest team-projected
// output into this reviewer's inputs. Absence of a submission is expected
// on the first pass and only logged.
func (a *Agent) fetchContentForReview(team *Team) {
	if a.ReviewerFor == "" || team == nil {
		return
	}
	entry, ok := team.Outputs.Last(a.ReviewerFor)
	if !ok {
		a.logEvent("no submission from " + a.ReviewerFor + " to review yet")
		return
	}
	a.Inputs.Add(entry.Message)
	a.logEvent("fetched content for review from " + a.ReviewerFor)
}

// formatPrompt resolves the configured prompt parameters against current
// state and substitutes them into the prompt template. Unknown references
// and unbound placeholders are configuration errors.
func (a *Agent) formatPrompt(project *Project, team *Team) (string, error) {
	params, err := resolvePromptParams(a.Config.PromptParams, a, team, project)
	if err != nil {
		return "", err
	}
	return renderTemplate(a.Config.PromptTemplate, params)
}

// Greet seeds the agent's outputs with its introduction message and records
// its teammates. Called once by the owning team.
func (a *Agent) Greet(teamName string, teammates []string) {
	a.Teammates = teammates
	greeting := fmt.Sprintf("%s '%s', and my name is '%s'", greetingPrefix, teamName, a.Name)
	a.Outputs.Add(TextMessage(greeting))
	a.logEvent("introduced to team " + teamName)
}
