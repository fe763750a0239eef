package model

import (
	"context"
	"sync"
)

// Mock is a test implementation of Client.
//
// Each Invoke returns the next scripted response; once the script is
// exhausted the last response repeats. Prompts are recorded for
// verification and Err, when set, is returned instead of a response.
type Mock struct {
	// Responses is the scripted response sequence.
	Responses []Response

	// Err, if set, is returned by every Invoke call.
	Err error

	mu      sync.Mutex
	prompts []string
	idx     int
}

// Invoke implements Client.
func (m *Mock) Invoke(ctx context.Context, prompt string) (Response, error) {
	if ctx.Err() != nil {
		return Response{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)

	if m.Err != nil {
		return Response{}, m.Err
	}
	if len(m.Responses) == 0 {
		return Response{}, nil
	}

	idx := m.idx
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.idx++
	}
	return m.Responses[idx], nil
}

// Prompts returns a copy of every prompt Invoke has received.
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// CallCount returns how many times Invoke has been called.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Reset clears recorded prompts and rewinds the response script.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = nil
	m.idx = 0
}

// MockFactory returns a Factory that hands every agent the same shared
// mock client.
func MockFactory(mock *Mock) Factory {
	return func(api string, cfg Config) (Client, error) {
		return mock, nil
	}
}
