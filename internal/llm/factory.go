package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mcqengine/internal/gemini"
	"mcqengine/internal/langchain"
	"mcqengine/internal/openai"
)

// Provider names accepted by New
const (
	ProviderGemini      = "gemini"
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"
	ProviderOllama      = "ollama"
)

// ErrUnknownProvider is returned for an unsupported provider name
var ErrUnknownProvider = errors.New("unknown model provider")

// Config describes one model endpoint
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Seed        int
	JSON        bool // Hint that the caller expects JSON output
}

// New creates a client for cfg.Provider.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini:
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:          cfg.APIKey,
			Model:           cfg.Model,
			Temperature:     float32(cfg.Temperature),
			MaxOutputTokens: int32(cfg.MaxTokens),
			JSON:            cfg.JSON,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderOpenAI:
		var seed *int
		if cfg.Seed != 0 {
			s := cfg.Seed
			seed = &s
		}
		c, err := openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: float32(cfg.Temperature),
			MaxTokens:   cfg.MaxTokens,
			Seed:        seed,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderHuggingFace, ProviderOllama:
		c, err := langchain.New(langchain.Config{
			Backend:     strings.ToLower(cfg.Provider),
			Model:       cfg.Model,
			Token:       cfg.APIKey,
			ServerURL:   cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Seed:        cfg.Seed,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
