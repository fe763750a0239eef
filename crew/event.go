// Package crew implements the agent/team/project orchestration core.
//
// A Project owns one or more Teams; a Team owns an ordered list of Agents
// (plus auto-generated reviewer Agents). Each Team compiles into a Workflow
// that invokes agents one at a time, routing control through conditional
// edges until the team's finish node is reached. Agents wrap a model.Client,
// render prompts from live orchestration state, and latch a final answer once
// their work passes review (or immediately, when no review is required).
package crew

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Target identifies the entity an audit event belongs to: the entity's kind
// ("Agent", "Team", "Project", "Task") plus its name.
type Target struct {
	Type string
	Name string
}

// String renders the target in Type('name') form. Search over targets
// matches against this rendering.
func (t Target) String() string {
	return fmt.Sprintf("%s('%s')", t.Type, t.Name)
}

// Event is a single immutable audit record. Every mutation of an
// orchestration entity appends one, so the trail can reconstruct what
// happened before a crash.
type Event struct {
	Timestamp   time.Time
	Target      Target
	Description string
}

// Log is an append-only, thread-safe sequence of Events. Each entity owns
// exactly one Log and is the only writer to it.
type Log struct {
	mu      sync.RWMutex
	history []Event
}

// NewLog creates a Log seeded with a "started" event for the given target.
func NewLog(target Target) *Log {
	l := &Log{}
	l.Add(target, "started")
	return l
}

// Add appends an event for the given target.
func (l *Log) Add(target Target, description string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = append(l.history, Event{
		Timestamp:   time.Now(),
		Target:      target,
		Description: description,
	})
}

// Last returns the most recent event and whether the log is non-empty.
func (l *Log) Last() (Event, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.history) == 0 {
		return Event{}, false
	}
	return l.history[len(l.history)-1], true
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.history)
}

// Events returns a copy of the full event history in append order.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.history))
	copy(out, l.history)
	return out
}

// Search returns every event whose description contains term.
func (l *Log) Search(term string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var results []Event
	for _, ev := range l.history {
		if strings.Contains(ev.Description, term) {
			results = append(results, ev)
		}
	}
	return results
}

// SearchTargets returns every event whose rendered target contains term.
// For example SearchTargets("Agent") matches all agent-scoped events, and
// SearchTargets("'writer'") matches a single entity by name.
func (l *Log) SearchTargets(term string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var results []Event
	for _, ev := range l.history {
		if strings.Contains(ev.Target.String(), term) {
			results = append(results, ev)
		}
	}
	return results
}
