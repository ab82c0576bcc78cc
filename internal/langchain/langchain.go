// Package langchain runs prompts through langchaingo models, covering the
// HuggingFace inference API and local Ollama servers.
package langchain

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/huggingface"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Supported backends
const (
	BackendHuggingFace = "huggingface"
	BackendOllama      = "ollama"
)

// Config selects a backend and its decoding parameters
type Config struct {
	Backend     string
	Model       string
	Token       string // HuggingFace API token
	ServerURL   string // Ollama server URL
	Temperature float64
	MaxTokens   int
	Seed        int
}

// Client generates text through a langchaingo model
type Client struct {
	model llms.Model
	opts  []llms.CallOption
}

// New builds the model for cfg.Backend
func New(cfg Config) (*Client, error) {
	var (
		model llms.Model
		err   error
	)
	switch cfg.Backend {
	case BackendHuggingFace:
		opts := []huggingface.Option{}
		if cfg.Model != "" {
			opts = append(opts, huggingface.WithModel(cfg.Model))
		}
		if cfg.Token != "" {
			opts = append(opts, huggingface.WithToken(cfg.Token))
		}
		model, err = huggingface.New(opts...)
	case BackendOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.ServerURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
		}
		model, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported langchain backend: %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s model: %w", cfg.Backend, err)
	}

	return NewFromModel(model, callOptions(cfg)...), nil
}

func callOptions(cfg Config) []llms.CallOption {
	opts := []llms.CallOption{llms.WithTemperature(cfg.Temperature)}
	if cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(cfg.MaxTokens))
	}
	if cfg.Seed != 0 {
		opts = append(opts, llms.WithSeed(cfg.Seed))
	}
	return opts
}

// NewFromModel wraps an existing langchaingo model
func NewFromModel(model llms.Model, opts ...llms.CallOption) *Client {
	return &Client{model: model, opts: opts}
}

// Generate runs a single prompt through the model
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, c.opts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate from prompt: %w", err)
	}
	return out, nil
}

// Close is a no-op for HTTP-backed models
func (c *Client) Close() error { return nil }
