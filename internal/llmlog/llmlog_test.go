package llmlog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Run("Should write requests and responses to the run file", func(t *testing.T) {
		dir := t.TempDir()
		l, err := New(dir, "run-1", 3)
		require.NoError(t, err)

		l.LogRequest("generator", "PROMPT TEXT")
		l.LogResponse("generator", "RAW OUTPUT")
		l.LogError("evaluator", errors.New("boom"))
		l.LogSectionResult(1, "rejected", "Invalid JSON")
		require.NoError(t, l.Close())

		data, err := os.ReadFile(filepath.Join(dir, "run-1.log"))
		require.NoError(t, err)
		out := string(data)
		assert.Contains(t, out, "Run ID: run-1")
		assert.Contains(t, out, "Sections: 3")
		assert.Contains(t, out, "LLM REQUEST (generator)")
		assert.Contains(t, out, "PROMPT TEXT")
		assert.Contains(t, out, "RAW OUTPUT")
		assert.Contains(t, out, "boom")
		assert.Contains(t, out, "Section 1: rejected - Invalid JSON")
		assert.Contains(t, out, "MCQ Generation Complete")
	})

	t.Run("Should log to a writer", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewWriter(&buf, "run-2", 0)
		l.LogResponse("evaluator", "yes")
		require.NoError(t, l.Close())
		assert.Contains(t, buf.String(), "LLM RESPONSE (evaluator)")
		assert.Equal(t, "run-2", l.RunID())
	})
}
