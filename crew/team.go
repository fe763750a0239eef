package crew

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/crewgraph/crewgraph-go/crew/catalog"
	"github.com/crewgraph/crewgraph-go/crew/model"
)

// greetingPrefix opens every introduction message. Review pushing skips
// messages carrying it so a reviewer's greeting is never delivered as
// feedback.
const greetingPrefix = "Hello! I'm on team"

// ReviewerSuffix is appended to a member name to form its reviewer's name.
const ReviewerSuffix = "_reviewer"

// Team owns an ordered list of agents and materializes their message logs
// and final answers into aggregate views. A member whose config requires
// review gets a paired reviewer agent placed directly after it.
type Team struct {
	// Name is randomly generated and unique per team instance.
	Name string

	ConfigName string
	Config     catalog.TeamSpec
	Leader     string

	// Members is ordered: each reviewed member is followed by its reviewer.
	Members []*Agent

	// MembersFinished grows monotonically as member latches set.
	MembersFinished []string

	// Goal is settable after construction; workflows typically copy the
	// project goal here before running.
	Goal string

	Backlog         map[string]string
	TaskAssignments map[string]string

	// Inputs and Outputs are materialized views over member logs, refreshed
	// by Update. They are additive and never drop stale entries.
	Inputs  *TeamMessageLog
	Outputs *TeamMessageLog

	// FinalAnswers maps member name to its captured final answer. Keys only
	// ever accumulate.
	FinalAnswers map[string]Message

	Log *Log

	// reviewers maps base member name to reviewer name, reviewerOf the
	// inverse.
	reviewers  map[string]string
	reviewerOf map[string]string

	// pushedReviews tracks, per reviewed member, how many of its reviewer's
	// projected output entries have already been delivered as feedback.
	pushedReviews map[string]int

	metrics *Metrics
}

// NewTeam builds a team from the named catalog entry, assembling every
// configured member and a reviewer for each member that requires review.
func NewTeam(configName string, cat *catalog.Catalog, factory model.Factory, metrics *Metrics) (*Team, error) {
	spec, err := cat.Team(configName)
	if err != nil {
		return nil, err
	}

	name := randomTeamName()
	t := &Team{
		Name:            name,
		ConfigName:      configName,
		Config:          spec,
		Leader:          spec.Leader,
		Backlog:         make(map[string]string),
		TaskAssignments: make(map[string]string),
		Inputs:          NewTeamMessageLog(),
		Outputs:         NewTeamMessageLog(),
		FinalAnswers:    make(map[string]Message),
		Log:             NewLog(Target{Type: "Team", Name: name}),
		reviewers:       make(map[string]string),
		reviewerOf:      make(map[string]string),
		pushedReviews:   make(map[string]int),
		metrics:         metrics,
	}
	if err := t.assemble(cat, factory); err != nil {
		return nil, err
	}
	return t, nil
}

// assemble creates the member agents in configured order. A reviewed member
// is immediately followed by its reviewer, built from the shared reviewer
// catalog entry.
func (t *Team) assemble(cat *catalog.Catalog, factory model.Factory) error {
	for _, memberName := range t.Config.Members {
		member, err := NewAgent(memberName, memberName, cat, factory, t.metrics)
		if err != nil {
			return fmt.Errorf("team %q: %w", t.Name, err)
		}
		t.Members = append(t.Members, member)
		t.TaskAssignments[memberName] = member.Task.ID
		t.logEvent("assembled member " + memberName)

		if !member.Config.NeedsReview {
			continue
		}
		reviewerName := memberName + ReviewerSuffix
		reviewer, err := NewAgent(reviewerName, catalog.ReviewerEntry, cat, factory, t.metrics)
		if err != nil {
			return fmt.Errorf("team %q: %w", t.Name, err)
		}
		reviewer.ReviewerFor = memberName
		t.Members = append(t.Members, reviewer)
		t.reviewers[memberName] = reviewerName
		t.reviewerOf[reviewerName] = memberName
		t.logEvent("assembled reviewer " + reviewerName + " for " + memberName)
	}
	return nil
}

func (t *Team) target() Target {
	return Target{Type: "Team", Name: t.Name}
}

func (t *Team) logEvent(desc string) {
	t.Log.Add(t.target(), desc)
}

// Member returns the named agent, or nil when the team has no such member.
func (t *Team) Member(name string) *Agent {
	for _, m := range t.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// ReviewerName returns the reviewer paired with the named member, or ""
// when the member has none.
func (t *Team) ReviewerName(member string) string {
	return t.reviewers[member]
}

// CheckFinished reports whether the named member's finished latch is set.
// Workflow edge predicates are built on this.
func (t *Team) CheckFinished(name string) bool {
	for _, finished := range t.MembersFinished {
		if finished == name {
			return true
		}
	}
	return false
}

// MarkFinished records a member's completion. The list only grows and never
// duplicates a name.
func (t *Team) MarkFinished(name string) {
	if t.CheckFinished(name) {
		return
	}
	t.MembersFinished = append(t.MembersFinished, name)
	t.logEvent("member finished: " + name)
}

// RequestIntroductions seeds every member's outputs with a greeting and
// tells each member who its teammates are.
func (t *Team) RequestIntroductions() {
	names := make([]string, len(t.Members))
	for i, m := range t.Members {
		names[i] = m.Name
	}
	for _, m := range t.Members {
		teammates := make([]string, 0, len(names)-1)
		for _, n := range names {
			if n != m.Name {
				teammates = append(teammates, n)
			}
		}
		m.Greet(t.Name, teammates)
	}
	t.logEvent("requested introductions")
}

// Update refreshes the team's aggregate views from its members and then
// delivers any new review verdicts to the members they address. Calling it
// repeatedly without intervening member activity changes nothing.
func (t *Team) Update() {
	t.fetchUpdates()
	t.pushReviews()
}

// fetchUpdates projects each member's logs and final answer into the team
// views. The merge is additive by member name.
func (t *Team) fetchUpdates() {
	for _, m := range t.Members {
		if m.Inputs.Len() > 0 {
			last, _ := m.Inputs.Last()
			t.Inputs.SetMember(m.Name, m.Inputs.History(), last)
		}
		if m.Outputs.Len() > 0 {
			last, _ := m.Outputs.Last()
			t.Outputs.SetMember(m.Name, m.Outputs.History(), last)
		}
		if m.FinalAnswer != nil {
			t.FinalAnswers[m.Name] = *m.FinalAnswer
		}
	}
}

// pushReviews appends each reviewer's new output entries to the inputs of
// the member it reviews. Greetings are not feedback and are skipped. Each
// entry is delivered exactly once.
func (t *Team) pushReviews() {
	for memberName, reviewerName := range t.reviewers {
		member := t.Member(memberName)
		if member == nil {
			continue
		}
		history := t.Outputs.History(reviewerName)
		for _, entry := range history[t.pushedReviews[memberName]:] {
			if strings.Contains(entry.Message.String(), greetingPrefix) {
				continue
			}
			member.Inputs.Add(entry.Message)
			t.metrics.RecordVerdict(memberName, entry.Message.PassReview())
			t.logEvent("pushed review from " + reviewerName + " to " + memberName)
		}
		t.pushedReviews[memberName] = len(history)
	}
}

// State captures a JSON-serializable snapshot of team progress, suitable
// for step persistence.
type TeamState struct {
	Team            string            `json:"team"`
	Goal            string            `json:"goal"`
	MembersFinished []string          `json:"members_finished"`
	FinalAnswers    map[string]string `json:"final_answers"`
	LastOutputs     map[string]string `json:"last_outputs"`
}

// State renders the team's current progress.
func (t *Team) State() TeamState {
	state := TeamState{
		Team:            t.Name,
		Goal:            t.Goal,
		MembersFinished: append([]string(nil), t.MembersFinished...),
		FinalAnswers:    make(map[string]string, len(t.FinalAnswers)),
		LastOutputs:     make(map[string]string),
	}
	for name, answer := range t.FinalAnswers {
		state.FinalAnswers[name] = answer.String()
	}
	for _, name := range t.Outputs.Members() {
		if entry, ok := t.Outputs.Last(name); ok {
			state.LastOutputs[name] = entry.Message.String()
		}
	}
	return state
}

// teamWords seeds random team names.
var teamWords = []string{
	"amber", "basalt", "cedar", "delta", "ember", "flint", "garnet",
	"harbor", "indigo", "juniper", "krypton", "lumen", "meridian",
	"nimbus", "onyx", "prairie", "quartz", "rook", "summit", "tundra",
}

func randomTeamName() string {
	id := uuid.NewString()
	word := teamWords[int(id[0]+id[1])%len(teamWords)]
	return fmt.Sprintf("%s-%s", word, id[:8])
}
