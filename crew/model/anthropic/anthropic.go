// Package anthropic adapts Anthropic's Messages API to the model.Client
// capability.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/crewgraph/crewgraph-go/crew/model"
)

// defaultMaxTokens applies when the configuration does not set one; the
// Messages API requires an explicit cap.
const defaultMaxTokens = 4096

// Client implements model.Client against Anthropic's Messages API.
// The underlying SDK client handles concurrent requests safely.
type Client struct {
	client anthropic.Client
	cfg    model.Config
}

// New creates an Anthropic-backed client.
func New(apiKey string, cfg model.Config) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("anthropic: model name is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Client{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
	}, nil
}

// Invoke implements model.Client. The SDK performs its own retry handling
// per the configured MaxRetries.
func (c *Client) Invoke(ctx context.Context, prompt string) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, err
	}

	maxTokens := int64(c.cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(c.cfg.Temperature)
	}
	if c.cfg.TopP > 0 {
		params.TopP = anthropic.Float(c.cfg.TopP)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return model.Response{}, fmt.Errorf("anthropic: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	input := int(message.Usage.InputTokens)
	output := int(message.Usage.OutputTokens)
	return model.Response{
		Content: sb.String(),
		Usage: model.Usage{
			Input:  input,
			Output: output,
			Total:  input + output,
		},
	}, nil
}
