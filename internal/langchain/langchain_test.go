package langchain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	reply   string
	err     error
	prompts []string
	opts    llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, opt := range options {
		opt(&f.opts)
	}
	for _, m := range messages {
		for _, part := range m.Parts {
			if text, ok := part.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestClientGenerate(t *testing.T) {
	t.Run("Should pass the prompt and decoding options", func(t *testing.T) {
		model := &fakeModel{reply: " Yes "}
		c := NewFromModel(model, callOptions(Config{Temperature: 0.1, MaxTokens: 128, Seed: 7})...)

		out, err := c.Generate(context.Background(), "Is the question written entirely in English?")
		require.NoError(t, err)
		assert.Equal(t, " Yes ", out)
		assert.Equal(t, []string{"Is the question written entirely in English?"}, model.prompts)
		assert.Equal(t, 128, model.opts.MaxTokens)
		assert.Equal(t, 7, model.opts.Seed)
		assert.InDelta(t, 0.1, model.opts.Temperature, 1e-9)
	})

	t.Run("Should wrap model errors", func(t *testing.T) {
		boom := errors.New("inference endpoint down")
		c := NewFromModel(&fakeModel{err: boom})
		_, err := c.Generate(context.Background(), "x")
		assert.ErrorIs(t, err, boom)
	})
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "torch"})
	assert.Error(t, err)
}
