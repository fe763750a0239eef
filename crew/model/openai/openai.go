// Package openai adapts OpenAI's chat completion API to the model.Client
// capability.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/crewgraph/crewgraph-go/crew/model"
)

// Client implements model.Client against OpenAI's API.
//
// Generation parameters (model, temperature, max tokens, seed, response
// format, timeout) are fixed at construction. Transient failures are
// retried up to the configured MaxRetries with a flat delay, scaled up for
// rate limits.
type Client struct {
	client     openai.Client
	cfg        model.Config
	retryDelay time.Duration
}

// New creates an OpenAI-backed client.
func New(apiKey string, cfg model.Config) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model name is required")
	}
	return &Client{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		cfg:        cfg,
		retryDelay: time.Second,
	}, nil
}

// Invoke implements model.Client.
func (c *Client) Invoke(ctx context.Context, prompt string) (model.Response, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		out, err := c.complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isTransient(err) {
			return model.Response{}, err
		}
		if attempt >= c.cfg.MaxRetries {
			break
		}

		delay := c.retryDelay
		if isRateLimited(err) {
			delay = c.retryDelay * time.Duration(attempt+1)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return model.Response{}, ctx.Err()
		}
	}
	return model.Response{}, fmt.Errorf("openai: failed after %d retries: %w", c.cfg.MaxRetries, lastErr)
}

func (c *Client) complete(ctx context.Context, prompt string) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, err
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature: openai.Float(c.cfg.Temperature),
	}
	if c.cfg.TopP > 0 {
		params.TopP = openai.Float(c.cfg.TopP)
	}
	if c.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.cfg.MaxTokens))
	}
	if c.cfg.Seed != 0 {
		params.Seed = openai.Int(int64(c.cfg.Seed))
	}
	if c.cfg.ResponseFormat == "json_object" {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: openai.Ptr(shared.NewResponseFormatJSONObjectParam()),
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.Response{}, fmt.Errorf("openai: %w", err)
	}
	if len(completion.Choices) == 0 {
		return model.Response{}, errors.New("openai: empty completion")
	}

	return model.Response{
		Content: completion.Choices[0].Message.Content,
		Usage: model.Usage{
			Input:  int(completion.Usage.PromptTokens),
			Output: int(completion.Usage.CompletionTokens),
			Total:  int(completion.Usage.TotalTokens),
		},
	}, nil
}

// isTransient reports whether an error is worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"timeout",
		"network",
		"connection",
		"temporary",
		"rate limit",
		"429",
		"500",
		"502",
		"503",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "429")
}
