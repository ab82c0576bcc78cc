package mcq

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/prompts"

	"mcqengine/internal/llm"
	"mcqengine/internal/logger"
	"mcqengine/internal/models"
)

var errNoObject = errors.New("no JSON object in output")

// GlossaryExtractor asks a generative model for the technical terms of a section
type GlossaryExtractor struct {
	model  llm.TextGenerator
	prompt prompts.PromptTemplate
	log    *logger.Logger
}

// NewGlossaryExtractor creates an extractor on top of model
func NewGlossaryExtractor(model llm.TextGenerator, log *logger.Logger) *GlossaryExtractor {
	if log == nil {
		log = logger.Nop()
	}
	return &GlossaryExtractor{
		model:  model,
		prompt: newTemplate(glossaryTemplate, inputArticle),
		log:    log,
	}
}

// TryExtract runs one model call and parses its output. The returned
// glossary is never nil, even on error.
func (g *GlossaryExtractor) TryExtract(ctx context.Context, section models.Section) (models.Glossary, error) {
	prompt, err := g.prompt.Format(map[string]any{inputArticle: string(section)})
	if err != nil {
		return models.Glossary{}, fmt.Errorf("render glossary prompt: %w", err)
	}

	raw, err := g.model.Generate(ctx, prompt)
	if err != nil {
		return models.Glossary{}, fmt.Errorf("glossary model call: %w", err)
	}

	glossary, err := ParseGlossary(raw)
	if err != nil {
		g.log.Warn("glossary output not parseable", "error", err, "raw", raw)
		return models.Glossary{}, fmt.Errorf("parse glossary: %w", err)
	}
	return glossary, nil
}

// Extract is TryExtract with soft failure: any error yields an empty glossary.
func (g *GlossaryExtractor) Extract(ctx context.Context, section models.Section) models.Glossary {
	glossary, err := g.TryExtract(ctx, section)
	if err != nil {
		g.log.Warn("glossary extraction failed, continuing with empty glossary", "error", err)
	}
	return glossary
}
