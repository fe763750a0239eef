package crew

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"
)

// Message is a single agent payload: either plain text or a structured
// JSON object (a parsed model response, e.g. a review verdict).
//
// Exactly one of Text / Fields is normally populated. The zero Message is
// "no message".
type Message struct {
	Text   string
	Fields map[string]any
}

// TextMessage wraps a plain string payload.
func TextMessage(text string) Message {
	return Message{Text: text}
}

// StructuredMessage wraps a parsed JSON object payload.
func StructuredMessage(fields map[string]any) Message {
	return Message{Fields: fields}
}

// IsZero reports whether the message carries no payload.
func (m Message) IsZero() bool {
	return m.Text == "" && m.Fields == nil
}

// String renders the payload for prompt substitution and search: the text
// itself for plain messages, compact JSON for structured ones.
func (m Message) String() string {
	if m.Fields != nil {
		data, err := json.Marshal(m.Fields)
		if err != nil {
			return m.Text
		}
		return string(data)
	}
	return m.Text
}

// PassReview reports whether the message is a structured review verdict
// whose pass_review field is affirmative. A missing key, a plain-text
// message, or any unrecognized value all degrade to false rather than
// erroring; "not passed" is the safe default for the review loop.
func (m Message) PassReview() bool {
	if m.Fields == nil {
		return false
	}
	switch v := m.Fields["pass_review"].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

// Entry is a timestamped message in an agent's history.
type Entry struct {
	Timestamp time.Time
	Message   Message
}

// MessageLog is the per-agent history of exchanged messages. It is
// append-only and mutated only by the owning agent (inputs by the review
// feedback channel, outputs by the agent's own turns).
type MessageLog struct {
	mu      sync.RWMutex
	history []Entry
}

// NewMessageLog creates an empty message log.
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Add appends a message with the current timestamp.
func (l *MessageLog) Add(msg Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = append(l.history, Entry{Timestamp: time.Now(), Message: msg})
}

// Last returns the most recent entry and whether one exists.
func (l *MessageLog) Last() (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.history) == 0 {
		return Entry{}, false
	}
	return l.history[len(l.history)-1], true
}

// LastMessage returns the most recent message body and whether one exists.
func (l *MessageLog) LastMessage() (Message, bool) {
	entry, ok := l.Last()
	return entry.Message, ok
}

// Len returns the number of entries.
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.history)
}

// History returns a copy of all entries in append order.
func (l *MessageLog) History() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.history))
	copy(out, l.history)
	return out
}

// Search returns every entry whose rendered message contains term.
func (l *MessageLog) Search(term string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var results []Entry
	for _, entry := range l.history {
		if strings.Contains(entry.Message.String(), term) {
			results = append(results, entry)
		}
	}
	return results
}

// TeamMessageLog is a materialized view over member message logs: member
// name to full history, plus member name to last entry. It is rebuilt
// additively each update tick by its owning Team (or, keyed by team name,
// by its owning Project). Keys are only ever added or refreshed, never
// removed, so aggregate views grow monotonically.
type TeamMessageLog struct {
	mu      sync.RWMutex
	history map[string][]Entry
	last    map[string]Entry
}

// NewTeamMessageLog creates an empty aggregate view.
func NewTeamMessageLog() *TeamMessageLog {
	return &TeamMessageLog{
		history: make(map[string][]Entry),
		last:    make(map[string]Entry),
	}
}

// SetMember replaces one member's projected history and last entry.
// Called only by the owning aggregate during its update tick.
func (l *TeamMessageLog) SetMember(name string, history []Entry, last Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history[name] = history
	l.last[name] = last
}

// Members returns the sorted set of member names present in the view.
func (l *TeamMessageLog) Members() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.history))
	for name := range l.history {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// History returns the projected history for one member.
func (l *TeamMessageLog) History(name string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := l.history[name]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Last returns the most recent entry projected for a member and whether
// that member has produced anything yet.
func (l *TeamMessageLog) Last(name string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.last[name]
	return entry, ok
}

// Len returns the number of member keys in the view.
func (l *TeamMessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.history)
}

// SearchContent returns every projected entry, across all members, whose
// rendered message contains term.
func (l *TeamMessageLog) SearchContent(term string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var results []Entry
	for _, name := range l.sortedNamesLocked() {
		for _, entry := range l.history[name] {
			if strings.Contains(entry.Message.String(), term) {
				results = append(results, entry)
			}
		}
	}
	return results
}

func (l *TeamMessageLog) sortedNamesLocked() []string {
	names := make([]string, 0, len(l.history))
	for name := range l.history {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a deep copy of the view. Projects store snapshots of
// their teams' views so a later team tick cannot mutate project state
// out from under a reader.
func (l *TeamMessageLog) Snapshot() *TeamMessageLog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snap := NewTeamMessageLog()
	for name, entries := range l.history {
		cp := make([]Entry, len(entries))
		copy(cp, entries)
		snap.history[name] = cp
	}
	for name, entry := range l.last {
		snap.last[name] = entry
	}
	return snap
}
