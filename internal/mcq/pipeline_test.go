package mcq

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcqengine/internal/chunker"
	"mcqengine/internal/llm"
	"mcqengine/internal/metrics"
	"mcqengine/internal/models"
)

const malformed = "I think the answer is c, but {\"statement\": oops"

func allYes() *recorder {
	return &recorder{respond: func(string) (string, error) { return "yes", nil }}
}

func TestPipeline_Run(t *testing.T) {
	t.Run("Should attach confidence to an accepted MCQ", func(t *testing.T) {
		gen := genStub(`{"enzyme": "catalyst"}`, func(string) string { return mcqJSON("What lowers activation energy?", "c") })
		eval := &recorder{respond: func(prompt string) (string, error) {
			if strings.Contains(prompt, "grammar") || strings.Contains(prompt, "plausible distractors") {
				return "no", nil
			}
			return "yes", nil
		}}

		out, err := NewPipeline(gen, eval).Run(context.Background(), "Enzymes lower activation energy.")
		require.NoError(t, err)
		require.True(t, out.Result.OK())
		require.NotNil(t, out.Result.MCQ.Confidence)
		assert.InDelta(t, 0.6, *out.Result.MCQ.Confidence, 1e-9)
		assert.Len(t, out.Evaluation, 5)
		assert.Empty(t, out.Warnings)
		assert.Contains(t, gen.Prompts()[1], `{"enzyme":"catalyst"}`)
	})

	t.Run("Should proceed with an empty glossary when extraction output is unparseable", func(t *testing.T) {
		gen := genStub("Terms: enzyme (a catalyst)", func(string) string { return mcqJSON("Q?", "c") })

		out, err := NewPipeline(gen, allYes()).Run(context.Background(), "Enzymes lower activation energy.")
		require.NoError(t, err)
		require.True(t, out.Result.OK())
		require.Len(t, out.Warnings, 1)
		assert.Equal(t, models.WarningGlossary, out.Warnings[0].Kind)

		prompts := gen.Prompts()
		require.Len(t, prompts, 2)
		assert.Contains(t, prompts[1], "Glossary:\n{}")
	})

	t.Run("Should short-circuit on a generation failure", func(t *testing.T) {
		gen := genStub("{}", func(string) string { return malformed })
		eval := allYes()

		out, err := NewPipeline(gen, eval).Run(context.Background(), "section")
		require.NoError(t, err)
		assert.Nil(t, out.Result.MCQ)
		require.NotNil(t, out.Result.Err)
		assert.Equal(t, models.ErrorRecord{Error: InvalidJSON, Raw: malformed}, *out.Result.Err)
		assert.NotNil(t, out.Evaluation)
		assert.Empty(t, out.Evaluation)
		assert.Zero(t, eval.Calls())
	})

	t.Run("Should record structural warnings without rejecting", func(t *testing.T) {
		gen := genStub("{}", func(string) string { return mcqJSON("Q?", "z") })

		out, err := NewPipeline(gen, allYes()).Run(context.Background(), "section")
		require.NoError(t, err)
		require.True(t, out.Result.OK())
		require.Len(t, out.Warnings, 1)
		assert.Equal(t, models.WarningAnswerLabel, out.Warnings[0].Kind)
	})

	t.Run("Should return generation model errors", func(t *testing.T) {
		boom := errors.New("model unavailable")
		gen := &recorder{respond: func(prompt string) (string, error) {
			if strings.HasPrefix(prompt, glossaryPromptPrefix) {
				return "{}", nil
			}
			return "", boom
		}}
		_, err := NewPipeline(gen, allYes()).Run(context.Background(), "section")
		assert.ErrorIs(t, err, boom)
	})
}

func TestPipeline_RunAll(t *testing.T) {
	t.Run("Should turn 1800 characters into two fully confident MCQs", func(t *testing.T) {
		text := prose(1800)
		sections := chunker.New(chunker.WithMaxChars(1000), chunker.WithMinLen(100)).Split(text)
		require.Len(t, sections, 2)
		for _, s := range sections {
			n := utf8.RuneCountInString(string(s))
			assert.LessOrEqual(t, n, 1000)
			assert.Greater(t, n, 100)
		}

		gen := genStub("{}", func(string) string { return mcqJSON("Which molecules lower activation energy?", "c") })
		mcqs, err := NewPipeline(gen, allYes(), WithMetrics(metrics.New())).RunAll(context.Background(), sections)
		require.NoError(t, err)
		require.Len(t, mcqs, 2)
		for _, m := range mcqs {
			assert.Equal(t, "c", m.Answer)
			require.NotNil(t, m.Confidence)
			assert.Equal(t, 1.0, *m.Confidence)
		}
	})

	t.Run("Should drop a section whose generation is malformed", func(t *testing.T) {
		sections := []models.Section{"first section text", "second section text", "third section text"}
		gen := genStub("{}", func(prompt string) string {
			if strings.Contains(prompt, "second section") {
				return malformed
			}
			return mcqJSON("Q?", "c")
		})

		mcqs, err := NewPipeline(gen, allYes()).RunAll(context.Background(), sections)
		require.NoError(t, err)
		assert.Len(t, mcqs, 2)
	})

	t.Run("Should return an empty list for no sections", func(t *testing.T) {
		mcqs, err := NewPipeline(constant(""), constant("")).RunAll(context.Background(), nil)
		require.NoError(t, err)
		assert.NotNil(t, mcqs)
		assert.Empty(t, mcqs)
	})
}

func TestPipeline_RunAllWithReport(t *testing.T) {
	t.Run("Should report rejected sections with their reasons", func(t *testing.T) {
		sections := []models.Section{"first section text", "second section text", "third section text"}
		gen := &recorder{respond: func(prompt string) (string, error) {
			switch {
			case strings.HasPrefix(prompt, glossaryPromptPrefix):
				return "{}", nil
			case strings.Contains(prompt, "second section"):
				return malformed, nil
			case strings.Contains(prompt, "third section"):
				return "", errors.New("backend timeout")
			}
			return mcqJSON("Q?", "c"), nil
		}}

		report, err := NewPipeline(gen, allYes()).RunAllWithReport(context.Background(), sections)
		require.NoError(t, err)
		assert.NotEmpty(t, report.RunID)
		assert.Equal(t, 1, report.Accepted)
		assert.Equal(t, 2, report.Rejected)
		require.Len(t, report.MCQs, 1)
		require.Len(t, report.Rejections, 2)

		assert.Equal(t, 1, report.Rejections[0].Section)
		assert.Equal(t, InvalidJSON, report.Rejections[0].Reason)
		assert.Equal(t, malformed, report.Rejections[0].Raw)

		assert.Equal(t, 2, report.Rejections[1].Section)
		assert.Contains(t, report.Rejections[1].Reason, "backend timeout")
		assert.Equal(t, 1, report.Warnings)
	})

	t.Run("Should keep section order with concurrent workers", func(t *testing.T) {
		marker := regexp.MustCompile(`marker-\d+`)
		gen := genStub("{}", func(prompt string) string {
			time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
			return mcqJSON("About "+marker.FindString(prompt), "c")
		})

		var sections []models.Section
		for i := 0; i < 8; i++ {
			sections = append(sections, models.Section(fmt.Sprintf("text for marker-%d", i)))
		}

		report, err := NewPipeline(gen, allYes(), WithWorkers(4)).RunAllWithReport(context.Background(), sections)
		require.NoError(t, err)
		require.Len(t, report.MCQs, 8)
		for i, m := range report.MCQs {
			assert.Equal(t, fmt.Sprintf("About marker-%d", i), m.Statement)
		}
	})

	t.Run("Should abort when the context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		gen := genStub("{}", func(string) string { return mcqJSON("Q?", "c") })

		_, err := NewPipeline(gen, allYes()).RunAllWithReport(ctx, []models.Section{"a section"})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Should write an audit log per run", func(t *testing.T) {
		dir := t.TempDir()
		gen := llm.Observe(genStub("{}", func(string) string { return mcqJSON("Q?", "c") }), "generator", nil, nil)
		eval := llm.Observe(allYes(), "evaluator", nil, nil)

		report, err := NewPipeline(gen, eval, WithAuditDir(dir)).RunAllWithReport(context.Background(), []models.Section{"a section"})
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, report.RunID+".log"))
		require.NoError(t, err)
		log := string(data)
		assert.Contains(t, log, "Run ID: "+report.RunID)
		assert.Contains(t, log, "LLM REQUEST (generator)")
		assert.Contains(t, log, "LLM RESPONSE (evaluator)")
		assert.Contains(t, log, "Section 0: ACCEPTED")
	})
}

type memorySink struct {
	reports []models.BatchReport
	err     error
}

func (m *memorySink) StoreReport(_ context.Context, r models.BatchReport) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.reports = append(m.reports, r)
	return "memory/" + r.RunID, nil
}

func TestPipeline_ReportSinks(t *testing.T) {
	ok := &memorySink{}
	broken := &memorySink{err: errors.New("bucket gone")}
	gen := genStub("{}", func(string) string { return mcqJSON("Q?", "c") })

	report, err := NewPipeline(gen, allYes(), WithReportSinks(broken, ok)).
		RunAllWithReport(context.Background(), []models.Section{"one section"})
	require.NoError(t, err)
	require.Len(t, ok.reports, 1)
	assert.Equal(t, report.RunID, ok.reports[0].RunID)
	assert.Equal(t, 1, ok.reports[0].Accepted)
}
