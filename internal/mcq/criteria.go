package mcq

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"mcqengine/internal/models"
)

// Input is a value a criterion prompt can be rendered with
type Input string

const (
	// InputQuestion is the statement plus pipe-joined options
	InputQuestion Input = inputQuestion
	// InputArticle is the source excerpt the question was written from
	InputArticle Input = inputArticle
)

// Criterion is one yes/no quality check. Its inputs are fixed when it is built.
type Criterion struct {
	Name     string
	Inputs   []Input
	template prompts.PromptTemplate
}

// NewCriterion declares a criterion whose template uses exactly inputs.
func NewCriterion(name, template string, inputs ...Input) Criterion {
	vars := make([]string, len(inputs))
	for i, in := range inputs {
		vars[i] = string(in)
	}
	return Criterion{
		Name:     name,
		Inputs:   inputs,
		template: newTemplate(template, vars...),
	}
}

// Needs reports whether the criterion declares in.
func (c Criterion) Needs(in Input) bool {
	for _, have := range c.Inputs {
		if have == in {
			return true
		}
	}
	return false
}

// Render fills the template with the declared inputs only.
func (c Criterion) Render(question, article string) (string, error) {
	values := make(map[string]any, len(c.Inputs))
	for _, in := range c.Inputs {
		switch in {
		case InputQuestion:
			values[string(in)] = question
		case InputArticle:
			values[string(in)] = article
		default:
			return "", fmt.Errorf("criterion %s: unknown input %q", c.Name, in)
		}
	}
	out, err := c.template.Format(values)
	if err != nil {
		return "", fmt.Errorf("criterion %s: %w", c.Name, err)
	}
	return out, nil
}

// QuestionText is the text every criterion sees for an MCQ
func QuestionText(mcq models.MCQ) string {
	return fmt.Sprintf("Statement: %s\nOptions: %s", mcq.Statement, strings.Join(mcq.Options, " | "))
}

// DefaultCriteria returns the five standard checks in evaluation order.
func DefaultCriteria() []Criterion {
	return []Criterion{
		NewCriterion(models.CriterionFormat,
			"You are evaluating a multiple-choice question for proper JSON structure.\n"+
				"Is the MCQ formatted as a valid JSON object with keys: 'statement', 'options', 'answer', and 'reasoning'?\n\n"+
				"{{.question}}\nAnswer:",
			InputQuestion),
		NewCriterion(models.CriterionLanguage,
			"Is the question written entirely in English?\n\n{{.question}}\nAnswer:",
			InputQuestion),
		NewCriterion(models.CriterionGrammar,
			"Is the grammar of this question correct?\n\n{{.question}}\nAnswer:",
			InputQuestion),
		NewCriterion(models.CriterionRelevance,
			"Is the question relevant to the excerpt?\nExcerpt:\n{{.article}}\n\nQuestion:\n{{.question}}\nAnswer:",
			InputArticle, InputQuestion),
		NewCriterion(models.CriterionOptions,
			"Does this MCQ have one correct and four plausible distractors?\nExcerpt:\n{{.article}}\n\nQuestion:\n{{.question}}\nAnswer:",
			InputArticle, InputQuestion),
	}
}
