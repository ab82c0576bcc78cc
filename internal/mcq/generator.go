package mcq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"mcqengine/internal/llm"
	"mcqengine/internal/logger"
	"mcqengine/internal/models"
)

// Generator writes one MCQ per section with a generative model
type Generator struct {
	model  llm.TextGenerator
	prompt prompts.PromptTemplate
	log    *logger.Logger
}

// NewGenerator creates a generator on top of model
func NewGenerator(model llm.TextGenerator, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{
		model:  model,
		prompt: newTemplate(generationTemplate, inputGlossary, inputArticle),
		log:    log,
	}
}

// Prompt renders the generation prompt for a section and its glossary.
func (g *Generator) Prompt(section models.Section, glossary models.Glossary) (string, error) {
	if glossary == nil {
		glossary = models.Glossary{}
	}
	glossaryJSON, err := json.Marshal(glossary)
	if err != nil {
		return "", fmt.Errorf("marshal glossary: %w", err)
	}
	return g.prompt.Format(map[string]any{
		inputGlossary: string(glossaryJSON),
		inputArticle:  string(section),
	})
}

// Generate invokes the model once and parses its output. Unparseable output
// is returned as an ErrorRecord; only a failed model call is an error.
func (g *Generator) Generate(ctx context.Context, section models.Section, glossary models.Glossary) (models.Generated, error) {
	prompt, err := g.Prompt(section, glossary)
	if err != nil {
		return models.Generated{}, fmt.Errorf("render generation prompt: %w", err)
	}

	raw, err := g.model.Generate(ctx, prompt)
	if err != nil {
		return models.Generated{}, fmt.Errorf("generation model call: %w", err)
	}

	result := ParseMCQ(raw)
	if !result.OK() {
		g.log.Warn("generation output rejected", "error", result.Err.Error, "raw", raw)
	}
	return result, nil
}

// expectedOptions is the number of options an MCQ should carry
const expectedOptions = 5

// CheckMCQ reports structural problems that do not invalidate the record:
// an option count other than five, or an answer that matches no option label.
func CheckMCQ(mcq models.MCQ) []models.Warning {
	var warnings []models.Warning
	if len(mcq.Options) != expectedOptions {
		warnings = append(warnings, models.Warning{
			Kind:    models.WarningOptionCount,
			Message: fmt.Sprintf("expected %d options, got %d", expectedOptions, len(mcq.Options)),
		})
	}

	answer := answerLabel(mcq.Answer)
	found := false
	for _, opt := range mcq.Options {
		if answer != "" && models.OptionLabel(opt) == answer {
			found = true
			break
		}
	}
	if !found {
		warnings = append(warnings, models.Warning{
			Kind:    models.WarningAnswerLabel,
			Message: fmt.Sprintf("answer %q matches no option label", mcq.Answer),
		})
	}
	return warnings
}

// answerLabel accepts "c", "C" or "c) ..." and returns "c".
func answerLabel(answer string) string {
	a := strings.TrimSpace(answer)
	if len(a) == 1 {
		return strings.ToLower(a)
	}
	return models.OptionLabel(a)
}
