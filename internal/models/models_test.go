package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluationResultConfidence(t *testing.T) {
	tests := []struct {
		name string
		eval EvaluationResult
		want float64
	}{
		{"three of five", EvaluationResult{
			CriterionFormat:    "yes",
			CriterionLanguage:  "yes",
			CriterionGrammar:   "no",
			CriterionRelevance: "yes",
			CriterionOptions:   "no",
		}, 0.6},
		{"all yes", EvaluationResult{CriterionFormat: "yes", CriterionGrammar: "yes"}, 1},
		{"no criteria", EvaluationResult{}, 0},
		{"nil result", nil, 0},
		{"only exact yes counts", EvaluationResult{
			CriterionFormat:   "yes.",
			CriterionLanguage: "Yes",
			CriterionGrammar:  JudgmentUnavailable,
			CriterionOptions:  "yes",
		}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.eval.Confidence(), 1e-9)
		})
	}
}

func TestOptionLabel(t *testing.T) {
	assert.Equal(t, "c", OptionLabel("c) Paris"))
	assert.Equal(t, "a", OptionLabel("  A) upper"))
	assert.Equal(t, "", OptionLabel("Paris"))
	assert.Equal(t, "", OptionLabel("c"))
}

func TestGeneratedOK(t *testing.T) {
	assert.True(t, Generated{MCQ: &MCQ{Statement: "s"}}.OK())
	assert.False(t, Generated{Err: &ErrorRecord{Error: "Invalid JSON"}}.OK())
	assert.False(t, Generated{}.OK())
}
