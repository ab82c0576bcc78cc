package mcq

import (
	"context"
	"fmt"
	"strings"

	"mcqengine/internal/llm"
	"mcqengine/internal/logger"
	"mcqengine/internal/metrics"
	"mcqengine/internal/models"
)

// Evaluator scores an MCQ against independent criteria with a second model
type Evaluator struct {
	model    llm.TextGenerator
	criteria []Criterion
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewEvaluator creates an evaluator. A nil criteria slice means DefaultCriteria.
func NewEvaluator(model llm.TextGenerator, criteria []Criterion, log *logger.Logger, m *metrics.Metrics) *Evaluator {
	if criteria == nil {
		criteria = DefaultCriteria()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Evaluator{model: model, criteria: criteria, log: log, metrics: m}
}

// Criteria returns the configured criteria.
func (e *Evaluator) Criteria() []Criterion { return e.criteria }

// Evaluate asks the model each criterion in turn and stores its lowercased,
// trimmed answer. A failed call is recorded as "unavailable" with a warning;
// only context cancellation aborts the evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, mcq models.MCQ, excerpt string) (models.EvaluationResult, []models.Warning, error) {
	question := QuestionText(mcq)
	result := make(models.EvaluationResult, len(e.criteria))
	var warnings []models.Warning

	for _, c := range e.criteria {
		prompt, err := c.Render(question, excerpt)
		if err != nil {
			return nil, warnings, err
		}

		out, err := e.model.Generate(ctx, prompt)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, warnings, fmt.Errorf("evaluate %s: %w", c.Name, ctxErr)
			}
			e.log.Warn("criterion unavailable", "criterion", c.Name, "error", err)
			result[c.Name] = models.JudgmentUnavailable
			warnings = append(warnings, models.Warning{
				Kind:    models.WarningCriterion,
				Message: fmt.Sprintf("%s: %v", c.Name, err),
			})
			e.metrics.ObserveJudgment(c.Name, models.JudgmentUnavailable)
			continue
		}

		judgment := strings.ToLower(strings.TrimSpace(out))
		result[c.Name] = judgment
		e.metrics.ObserveJudgment(c.Name, judgment)
	}

	return result, warnings, nil
}
