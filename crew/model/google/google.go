// Package google adapts Google's Gemini API to the model.Client capability.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/crewgraph/crewgraph-go/crew/model"
)

// Client implements model.Client against Google's Gemini API.
type Client struct {
	client *genai.Client
	cfg    model.Config
}

// New creates a Gemini-backed client. Close releases the underlying
// connection when the client is no longer needed.
func New(ctx context.Context, apiKey string, cfg model.Config) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("google: API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("google: model name is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("google: create client: %w", err)
	}
	return &Client{client: client, cfg: cfg}, nil
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Invoke implements model.Client.
func (c *Client) Invoke(ctx context.Context, prompt string) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, err
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	gm := c.client.GenerativeModel(c.cfg.Model)
	if c.cfg.ResponseFormat == "json_object" {
		gm.ResponseMIMEType = "application/json"
	}
	temp := float32(c.cfg.Temperature)
	gm.GenerationConfig.Temperature = &temp
	if c.cfg.TopP > 0 {
		topP := float32(c.cfg.TopP)
		gm.GenerationConfig.TopP = &topP
	}
	if c.cfg.MaxTokens > 0 {
		maxTokens := int32(c.cfg.MaxTokens)
		gm.GenerationConfig.MaxOutputTokens = &maxTokens
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return model.Response{}, fmt.Errorf("google: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return model.Response{}, errors.New("google: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	usage := model.Usage{}
	if resp.UsageMetadata != nil {
		usage = model.Usage{
			Input:  int(resp.UsageMetadata.PromptTokenCount),
			Output: int(resp.UsageMetadata.CandidatesTokenCount),
			Total:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return model.Response{Content: sb.String(), Usage: usage}, nil
}
