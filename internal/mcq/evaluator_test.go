package mcq

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcqengine/internal/metrics"
	"mcqengine/internal/models"
)

var sampleMCQ = models.MCQ{
	Reasoning: "r",
	Statement: "What do enzymes lower?",
	Options:   []string{"a) mass", "b) heat", "c) activation energy", "d) pH", "e) volume"},
	Answer:    "c",
}

const sampleExcerpt = "Enzymes lower the activation energy of reactions."

func TestDefaultCriteria(t *testing.T) {
	criteria := DefaultCriteria()
	names := make([]string, len(criteria))
	for i, c := range criteria {
		names[i] = c.Name
	}
	assert.Equal(t, []string{
		models.CriterionFormat,
		models.CriterionLanguage,
		models.CriterionGrammar,
		models.CriterionRelevance,
		models.CriterionOptions,
	}, names)

	for _, c := range criteria {
		assert.True(t, c.Needs(InputQuestion), c.Name)
		needsArticle := c.Name == models.CriterionRelevance || c.Name == models.CriterionOptions
		assert.Equal(t, needsArticle, c.Needs(InputArticle), c.Name)
	}
}

func TestCriterion_Render(t *testing.T) {
	question := QuestionText(sampleMCQ)
	assert.Equal(t, "Statement: What do enzymes lower?\nOptions: a) mass | b) heat | c) activation energy | d) pH | e) volume", question)

	t.Run("Should render only declared inputs", func(t *testing.T) {
		c := NewCriterion("grammar", "Q: {{.question}}", InputQuestion)
		out, err := c.Render(question, sampleExcerpt)
		require.NoError(t, err)
		assert.Equal(t, "Q: "+question, out)
		assert.NotContains(t, out, sampleExcerpt)
	})

	t.Run("Should render the excerpt when declared", func(t *testing.T) {
		c := NewCriterion("relevance", "{{.article}} / {{.question}}", InputArticle, InputQuestion)
		out, err := c.Render("q", "a")
		require.NoError(t, err)
		assert.Equal(t, "a / q", out)
	})

	t.Run("Should reject unknown inputs", func(t *testing.T) {
		c := NewCriterion("odd", "{{.tone}}", Input("tone"))
		_, err := c.Render("q", "a")
		assert.Error(t, err)
	})
}

func TestEvaluator_Evaluate(t *testing.T) {
	t.Run("Should lowercase and trim every response", func(t *testing.T) {
		rec := &recorder{respond: func(prompt string) (string, error) {
			switch {
			case strings.Contains(prompt, "grammar"):
				return "  No\n", nil
			case strings.Contains(prompt, "English"):
				return "Yes, it is.", nil
			default:
				return " YES ", nil
			}
		}}
		e := NewEvaluator(rec, nil, nil, metrics.New())

		result, warnings, err := e.Evaluate(context.Background(), sampleMCQ, sampleExcerpt)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, models.EvaluationResult{
			models.CriterionFormat:    "yes",
			models.CriterionLanguage:  "yes, it is.",
			models.CriterionGrammar:   "no",
			models.CriterionRelevance: "yes",
			models.CriterionOptions:   "yes",
		}, result)
		assert.InDelta(t, 0.6, result.Confidence(), 1e-9)
		assert.Equal(t, 5, rec.Calls())
	})

	t.Run("Should pass the excerpt only to criteria that need it", func(t *testing.T) {
		rec := &recorder{respond: func(string) (string, error) { return "yes", nil }}
		_, _, err := NewEvaluator(rec, nil, nil, nil).Evaluate(context.Background(), sampleMCQ, sampleExcerpt)
		require.NoError(t, err)

		prompts := rec.Prompts()
		require.Len(t, prompts, 5)
		for i, p := range prompts {
			assert.Contains(t, p, "Statement: What do enzymes lower?")
			assert.Equal(t, i >= 3, strings.Contains(p, sampleExcerpt), "prompt %d", i)
		}
	})

	t.Run("Should mark a failing criterion unavailable and continue", func(t *testing.T) {
		rec := &recorder{respond: func(prompt string) (string, error) {
			if strings.Contains(prompt, "grammar") {
				return "", errors.New("rate limited")
			}
			return "yes", nil
		}}
		result, warnings, err := NewEvaluator(rec, nil, nil, nil).Evaluate(context.Background(), sampleMCQ, sampleExcerpt)
		require.NoError(t, err)
		assert.Equal(t, models.JudgmentUnavailable, result[models.CriterionGrammar])
		assert.Len(t, result, 5)
		require.Len(t, warnings, 1)
		assert.Equal(t, models.WarningCriterion, warnings[0].Kind)
		assert.Contains(t, warnings[0].Message, "rate limited")
		assert.InDelta(t, 0.8, result.Confidence(), 1e-9)
	})

	t.Run("Should abort when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rec := &recorder{respond: func(string) (string, error) { return "yes", nil }}
		_, _, err := NewEvaluator(rec, nil, nil, nil).Evaluate(ctx, sampleMCQ, sampleExcerpt)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, rec.Calls())
	})

	t.Run("Should use custom criteria", func(t *testing.T) {
		only := []Criterion{NewCriterion("brevity", "Is it short? {{.question}}", InputQuestion)}
		result, _, err := NewEvaluator(constant("yes"), only, nil, nil).Evaluate(context.Background(), sampleMCQ, "")
		require.NoError(t, err)
		assert.Equal(t, models.EvaluationResult{"brevity": "yes"}, result)
	})
}
