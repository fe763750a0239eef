// Package model defines the opaque model capability the orchestration core
// invokes, plus the configuration passed through to provider clients at
// construction time. Provider adapters live in the openai, anthropic, and
// google subpackages; Mock backs tests.
package model

import (
	"context"
	"encoding/json"
	"time"
)

// Client is a synchronous prompt-in, structured-response-out capability.
// The core does not care which provider backs it.
type Client interface {
	// Invoke sends a rendered prompt and blocks until the provider answers.
	// Errors are provider or network failures and surface to the workflow
	// driver as a hard stop of the current step; any retry masking of
	// transient failures happens inside the client, per its configured
	// MaxRetries.
	Invoke(ctx context.Context, prompt string) (Response, error)
}

// Response is the raw provider output: text content plus a usage summary.
type Response struct {
	Content string
	Usage   Usage
}

// Usage is the token accounting reported by the provider for one call.
type Usage struct {
	Input  int `json:"input_tokens"`
	Output int `json:"output_tokens"`
	Total  int `json:"total_tokens"`
}

// JSON renders the usage map for audit logging.
func (u Usage) JSON() string {
	data, err := json.Marshal(u)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Config carries the generation parameters a client is constructed with.
// These are fixed at construction and never vary per call.
type Config struct {
	Model          string
	Temperature    float64
	TopP           float64
	Seed           int
	MaxTokens      int
	MaxRetries     int
	Timeout        time.Duration
	ResponseFormat string
}

// Factory builds a client for a provider API name ("openai", "anthropic",
// "google") with the given configuration. Project and team constructors
// take a Factory so tests can inject mocks.
type Factory func(api string, cfg Config) (Client, error)
