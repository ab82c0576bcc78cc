package mcq

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mcqengine/internal/llm"
	"mcqengine/internal/llmlog"
	"mcqengine/internal/logger"
	"mcqengine/internal/metrics"
	"mcqengine/internal/models"
)

// Section outcomes as counted in metrics and the audit log
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// ReportSink stores a finished batch report and returns where it went
type ReportSink interface {
	StoreReport(ctx context.Context, report models.BatchReport) (string, error)
}

// Pipeline drives sections through glossary extraction, generation and evaluation
type Pipeline struct {
	glossary  *GlossaryExtractor
	generator *Generator
	evaluator *Evaluator

	criteria []Criterion
	workers  int
	auditDir string
	sinks    []ReportSink
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithWorkers bounds how many sections are processed at once. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n < 1 {
			n = 1
		}
		p.workers = n
	}
}

// WithLogger sets the structured logger
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMetrics records section outcomes, judgments and warnings in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithAuditDir writes a per-run audit log of every model call into dir
func WithAuditDir(dir string) Option {
	return func(p *Pipeline) { p.auditDir = dir }
}

// WithCriteria replaces the default evaluation criteria
func WithCriteria(criteria []Criterion) Option {
	return func(p *Pipeline) { p.criteria = criteria }
}

// WithReportSinks stores every finished report in each sink. A failing sink
// is logged and does not fail the run.
func WithReportSinks(sinks ...ReportSink) Option {
	return func(p *Pipeline) { p.sinks = append(p.sinks, sinks...) }
}

// NewPipeline wires the three stages. genModel serves glossary extraction and
// generation; evalModel answers the evaluation criteria.
func NewPipeline(genModel, evalModel llm.TextGenerator, opts ...Option) *Pipeline {
	p := &Pipeline{
		workers: 1,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.glossary = NewGlossaryExtractor(genModel, p.log)
	p.generator = NewGenerator(genModel, p.log)
	p.evaluator = NewEvaluator(evalModel, p.criteria, p.log, p.metrics)
	return p
}

// Run processes one section. A generation failure short-circuits with the
// ErrorRecord, an empty evaluation and no confidence. An error is returned
// only when the generation call fails or ctx is done.
func (p *Pipeline) Run(ctx context.Context, section models.Section) (models.Outcome, error) {
	var warnings []models.Warning
	defer func() {
		for _, w := range warnings {
			p.metrics.ObserveWarning(string(w.Kind))
		}
	}()

	glossary, err := p.glossary.TryExtract(ctx, section)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Outcome{}, ctxErr
		}
		warnings = append(warnings, models.Warning{Kind: models.WarningGlossary, Message: err.Error()})
	}

	generated, err := p.generator.Generate(ctx, section, glossary)
	if err != nil {
		return models.Outcome{Warnings: warnings}, err
	}
	if !generated.OK() {
		warnings = append(warnings, models.Warning{
			Kind:    models.WarningGenerationRaw,
			Message: generated.Err.Error,
		})
		return models.Outcome{
			Result:     generated,
			Evaluation: models.EvaluationResult{},
			Warnings:   warnings,
		}, nil
	}

	warnings = append(warnings, CheckMCQ(*generated.MCQ)...)

	evaluation, evalWarnings, err := p.evaluator.Evaluate(ctx, *generated.MCQ, string(section))
	warnings = append(warnings, evalWarnings...)
	if err != nil {
		return models.Outcome{Result: generated, Warnings: warnings}, err
	}

	confidence := evaluation.Confidence()
	generated.MCQ.Confidence = &confidence

	return models.Outcome{
		Result:     generated,
		Evaluation: evaluation,
		Warnings:   warnings,
	}, nil
}

// RunAll returns the accepted MCQs in section order. Sections that produced
// an ErrorRecord, or whose model calls failed, are left out.
func (p *Pipeline) RunAll(ctx context.Context, sections []models.Section) ([]models.MCQ, error) {
	report, err := p.RunAllWithReport(ctx, sections)
	if err != nil {
		return nil, err
	}
	return report.MCQs, nil
}

// RunAllWithReport is RunAll plus accept/reject counts and the reason each
// rejected section was dropped. Only context cancellation aborts the batch.
func (p *Pipeline) RunAllWithReport(ctx context.Context, sections []models.Section) (models.BatchReport, error) {
	report := models.BatchReport{
		RunID: uuid.NewString(),
		MCQs:  []models.MCQ{},
	}
	log := p.log.With("run_id", report.RunID)

	var audit *llmlog.Logger
	if p.auditDir != "" {
		var err error
		audit, err = llmlog.New(p.auditDir, report.RunID, len(sections))
		if err != nil {
			return report, fmt.Errorf("open audit log: %w", err)
		}
		defer audit.Close()
		ctx = llm.WithAudit(ctx, audit)
	}

	log.Info("pipeline run started", "sections", len(sections), "workers", p.workers)

	outcomes := make([]models.Outcome, len(sections))
	failures := make([]error, len(sections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, section := range sections {
		g.Go(func() error {
			out, err := p.Run(gctx, section)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures[i] = err
				return nil
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("pipeline run aborted", "error", err)
		return report, err
	}

	for i, out := range outcomes {
		report.Warnings += len(out.Warnings)

		switch {
		case failures[i] != nil:
			p.reject(&report, audit, OutcomeFailed, models.Rejection{Section: i, Reason: failures[i].Error()})
		case !out.Result.OK():
			p.reject(&report, audit, OutcomeRejected, models.Rejection{
				Section: i,
				Reason:  out.Result.Err.Error,
				Raw:     out.Result.Err.Raw,
			})
		default:
			report.MCQs = append(report.MCQs, *out.Result.MCQ)
			report.Accepted++
			p.metrics.ObserveSection(OutcomeAccepted)
			if audit != nil {
				audit.LogSectionResult(i, "ACCEPTED", fmt.Sprintf("confidence %.2f", *out.Result.MCQ.Confidence))
			}
		}
	}

	log.Info("pipeline run finished",
		"accepted", report.Accepted,
		"rejected", report.Rejected,
		"warnings", report.Warnings,
	)

	for _, sink := range p.sinks {
		where, err := sink.StoreReport(ctx, report)
		if err != nil {
			log.Warn("storing report failed", "error", err)
			continue
		}
		log.Info("report stored", "location", where)
	}
	return report, nil
}

func (p *Pipeline) reject(report *models.BatchReport, audit *llmlog.Logger, outcome string, r models.Rejection) {
	report.Rejected++
	report.Rejections = append(report.Rejections, r)
	p.metrics.ObserveSection(outcome)
	p.log.Debug("section rejected", "section", r.Section, "reason", r.Reason)
	if audit != nil {
		audit.LogSectionResult(r.Section, "REJECTED", r.Reason)
	}
}
