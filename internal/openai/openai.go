// Package openai adapts the OpenAI chat completion API (and compatible
// servers such as vLLM or TGI) to a single-prompt text generator.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured
const DefaultModel = openai.GPT4oMini

// ErrNoChoices is returned when the completion carries no choices
var ErrNoChoices = errors.New("no choices in completion response")

// Config holds the connection and decoding parameters
type Config struct {
	APIKey      string
	BaseURL     string // Optional, for OpenAI-compatible servers
	Model       string
	Temperature float32
	MaxTokens   int
	Seed        *int
}

// Client generates text with a chat completion model
type Client struct {
	client *openai.Client
	cfg    Config
}

// NewClient creates a new client from cfg
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}, nil
}

// Generate sends prompt as a single user message and returns the first choice's content
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Seed:        c.cfg.Seed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the HTTP client needs no teardown
func (c *Client) Close() error { return nil }
