// Package llmlog writes a per-run audit trail of every prompt sent to a model
// and every response received.
package llmlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger handles logging of all LLM interactions for one pipeline run
type Logger struct {
	w     io.Writer
	file  *os.File
	mu    sync.Mutex
	runID string
}

// New creates <dir>/<runID>.log and writes the run header.
func New(dir, runID string, sections int) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", runID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log file: %w", err)
	}

	l := &Logger{w: file, file: file, runID: runID}
	l.writeHeader(sections)
	return l, nil
}

// NewWriter logs to an arbitrary writer. Close does not close w.
func NewWriter(w io.Writer, runID string, sections int) *Logger {
	l := &Logger{w: w, runID: runID}
	l.writeHeader(sections)
	return l
}

func (l *Logger) writeHeader(sections int) {
	l.Logf("=== MCQ Generation Log ===\n")
	l.Logf("Run ID: %s\n", l.runID)
	l.Logf("Sections: %d\n", sections)
	l.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	l.Logf("==========================\n\n")
}

// RunID returns the run this log belongs to.
func (l *Logger) RunID() string { return l.runID }

// Logf writes a formatted log entry with timestamp
func (l *Logger) Logf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(l.w, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	if l.file != nil {
		l.file.Sync()
	}
}

// LogRequest logs a prompt sent to the named model role
func (l *Logger) LogRequest(module, prompt string) {
	l.Logf("=== LLM REQUEST (%s) ===\nPrompt:\n%s\n=====================\n\n", module, prompt)
}

// LogResponse logs the raw text returned by the named model role
func (l *Logger) LogResponse(module, response string) {
	l.Logf("=== LLM RESPONSE (%s) ===\nResponse:\n%s\n======================\n\n", module, response)
}

// LogError logs a failed model call
func (l *Logger) LogError(module string, err error) {
	l.Logf("=== LLM ERROR (%s) ===\n%v\n===================\n\n", module, err)
}

// LogSectionResult logs whether a section was accepted or rejected
func (l *Logger) LogSectionResult(section int, action, reason string) {
	l.Logf("Section %d: %s - %s\n", section, action, reason)
}

// Close writes the footer and closes the underlying file, if any
func (l *Logger) Close() error {
	l.Logf("=== MCQ Generation Complete ===\nCompleted: %s\n===============================\n", time.Now().Format(time.RFC3339))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
