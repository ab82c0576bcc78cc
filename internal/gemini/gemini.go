package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	// DefaultModel is the Gemini model used when none is configured
	DefaultModel = "gemini-2.0-flash"
)

// ErrNoContent is returned when Gemini answers without any text part
var ErrNoContent = errors.New("no content generated")

// Config holds the generation parameters for one Gemini model
type Config struct {
	APIKey          string
	Model           string
	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32
	JSON            bool // Ask for application/json responses
}

// Client wraps the Gemini client and one configured model
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = DefaultModel
	}
	model := client.GenerativeModel(name)
	if cfg.JSON {
		model.ResponseMIMEType = "application/json"
	}

	// Decoding parameters
	model.SetTemperature(cfg.Temperature)
	if cfg.TopK > 0 {
		model.SetTopK(cfg.TopK)
	}
	if cfg.TopP > 0 {
		model.SetTopP(cfg.TopP)
	}
	if cfg.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

// Generate sends a single text prompt and returns the concatenated text of the first candidate
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoContent
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", ErrNoContent
	}
	return sb.String(), nil
}
