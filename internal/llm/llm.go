// Package llm defines the model invocation capability used by the pipeline
// and builds concrete generators from configuration.
package llm

import (
	"context"
	"time"

	"mcqengine/internal/llmlog"
	"mcqengine/internal/logger"
	"mcqengine/internal/metrics"
)

// TextGenerator turns a prompt into raw model text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is a TextGenerator that owns resources.
type Client interface {
	TextGenerator
	Close() error
}

// Func adapts a plain function to TextGenerator.
type Func func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type auditKey struct{}

// WithAudit attaches a per-run audit log to ctx.
func WithAudit(ctx context.Context, l *llmlog.Logger) context.Context {
	return context.WithValue(ctx, auditKey{}, l)
}

// AuditFrom returns the audit log attached to ctx, or nil.
func AuditFrom(ctx context.Context) *llmlog.Logger {
	l, _ := ctx.Value(auditKey{}).(*llmlog.Logger)
	return l
}

// Observed wraps a generator with debug logging, metrics and the per-run
// audit log found in the call's context.
type Observed struct {
	next    TextGenerator
	role    string
	log     *logger.Logger
	metrics *metrics.Metrics
}

// Observe wraps next. role names the model in logs ("generator", "evaluator").
func Observe(next TextGenerator, role string, log *logger.Logger, m *metrics.Metrics) *Observed {
	if log == nil {
		log = logger.Nop()
	}
	return &Observed{next: next, role: role, log: log, metrics: m}
}

// Generate implements TextGenerator.
func (o *Observed) Generate(ctx context.Context, prompt string) (string, error) {
	audit := AuditFrom(ctx)
	if audit != nil {
		audit.LogRequest(o.role, prompt)
	}

	start := time.Now()
	out, err := o.next.Generate(ctx, prompt)
	took := time.Since(start)
	o.metrics.ObserveModelCall(o.role, err, took)

	if err != nil {
		o.log.Warn("model call failed", "role", o.role, "took", took, "error", err)
		if audit != nil {
			audit.LogError(o.role, err)
		}
		return "", err
	}

	o.log.Debug("model call", "role", o.role, "took", took, "prompt_chars", len(prompt), "response_chars", len(out))
	if audit != nil {
		audit.LogResponse(o.role, out)
	}
	return out, nil
}
