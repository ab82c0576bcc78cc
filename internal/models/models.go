package models

import "strings"

// Section is a bounded chunk of cleaned source text used as the unit of MCQ generation.
type Section string

// Glossary maps technical terms to their definitions. It may be empty.
type Glossary map[string]string

// MCQ represents a single generated multiple-choice question
type MCQ struct {
	Reasoning  string   `json:"reasoning"`
	Statement  string   `json:"statement"`
	Options    []string `json:"options"`
	Answer     string   `json:"answer"`
	Confidence *float64 `json:"confidence,omitempty"` // Set only after evaluation
}

// ErrorRecord stands in for an MCQ when the model output could not be parsed.
// It never carries MCQ fields.
type ErrorRecord struct {
	Error string `json:"error"`
	Raw   string `json:"raw"`
}

// Generated is the result of one generation attempt. Exactly one of MCQ or Err is set.
type Generated struct {
	MCQ *MCQ         `json:"mcq,omitempty"`
	Err *ErrorRecord `json:"error,omitempty"`
}

// OK reports whether the attempt produced a valid MCQ.
func (g Generated) OK() bool {
	return g.MCQ != nil && g.Err == nil
}

// Criterion names used in an EvaluationResult
const (
	CriterionFormat    = "format"
	CriterionLanguage  = "language"
	CriterionGrammar   = "grammar"
	CriterionRelevance = "relevance"
	CriterionOptions   = "options"
)

// Judgment values with special meaning
const (
	JudgmentYes         = "yes"
	JudgmentUnavailable = "unavailable"
)

// EvaluationResult maps a criterion name to the evaluation model's lowercased, trimmed answer.
type EvaluationResult map[string]string

// Confidence is the fraction of criteria answered exactly "yes", or 0 when there are none.
func (e EvaluationResult) Confidence() float64 {
	if len(e) == 0 {
		return 0
	}
	yes := 0
	for _, v := range e {
		if v == JudgmentYes {
			yes++
		}
	}
	return float64(yes) / float64(len(e))
}

// WarningKind classifies a non-fatal problem observed while processing a section
type WarningKind string

const (
	WarningGlossary      WarningKind = "glossary_unavailable"
	WarningCriterion     WarningKind = "criterion_unavailable"
	WarningAnswerLabel   WarningKind = "answer_label_mismatch"
	WarningOptionCount   WarningKind = "option_count"
	WarningGenerationRaw WarningKind = "invalid_generation"
)

// Warning describes something that degraded a section's result without aborting it
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// Outcome is everything the pipeline produced for one section
type Outcome struct {
	Result     Generated        `json:"result"`
	Evaluation EvaluationResult `json:"evaluation"`
	Warnings   []Warning        `json:"warnings,omitempty"`
}

// Rejection records why a section did not yield an accepted MCQ
type Rejection struct {
	Section int    `json:"section"` // 0-based index into the input sections
	Reason  string `json:"reason"`
	Raw     string `json:"raw,omitempty"`
}

// BatchReport summarises a whole run. MCQs holds only accepted records.
type BatchReport struct {
	RunID      string      `json:"run_id"`
	MCQs       []MCQ       `json:"results"`
	Accepted   int         `json:"accepted"`
	Rejected   int         `json:"rejected"`
	Rejections []Rejection `json:"rejections,omitempty"`
	Warnings   int         `json:"warnings"`
}

// OptionLabel returns the lowercase label letter of an option such as "c) Paris", or "".
func OptionLabel(option string) string {
	s := strings.TrimSpace(option)
	if len(s) < 2 || s[1] != ')' {
		return ""
	}
	return strings.ToLower(s[:1])
}
