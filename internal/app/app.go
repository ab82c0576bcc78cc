// Package app wires configuration, models and the pipeline into a runnable service.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"mcqengine/internal/api"
	"mcqengine/internal/chunker"
	"mcqengine/internal/config"
	"mcqengine/internal/db"
	"mcqengine/internal/llm"
	"mcqengine/internal/logger"
	"mcqengine/internal/mcq"
	"mcqengine/internal/metrics"
	"mcqengine/internal/r2"
)

// App holds the long-lived pieces shared by the server and the CLI
type App struct {
	Cfg      *config.Config
	Log      *logger.Logger
	Metrics  *metrics.Metrics
	Chunker  *chunker.Chunker
	Pipeline *mcq.Pipeline
	DB       *db.DB     // nil unless DATABASE_URL is set
	Archive  *r2.Client // nil unless the R2 settings are complete

	clients []llm.Client
}

// New builds the model clients and the pipeline described by cfg.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	a := &App{
		Cfg:     cfg,
		Log:     log,
		Metrics: metrics.New(),
		Chunker: chunker.New(chunker.WithMaxChars(cfg.ChunkMaxChars), chunker.WithMinLen(cfg.ChunkMinLen)),
	}

	gen, err := a.client(ctx, "generator", cfg.Generator)
	if err != nil {
		return nil, err
	}
	eval, err := a.client(ctx, "evaluator", cfg.Evaluator)
	if err != nil {
		a.Close()
		return nil, err
	}

	sinks, err := a.reportSinks(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Pipeline = mcq.NewPipeline(gen, eval,
		mcq.WithWorkers(cfg.Workers),
		mcq.WithLogger(log),
		mcq.WithMetrics(a.Metrics),
		mcq.WithAuditDir(cfg.AuditLogDir),
		mcq.WithReportSinks(sinks...),
	)
	return a, nil
}

func (a *App) reportSinks(ctx context.Context) ([]mcq.ReportSink, error) {
	var sinks []mcq.ReportSink
	if a.Cfg.DatabaseURL != "" {
		store, err := db.NewDB(ctx, a.Cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init report store: %w", err)
		}
		a.DB = store
		sinks = append(sinks, store)
		a.Log.Info("report store ready")
	}
	if a.Cfg.Archive.Enabled() {
		archive, err := r2.NewClient(ctx, a.Cfg.Archive)
		if err != nil {
			return nil, fmt.Errorf("init report archive: %w", err)
		}
		a.Archive = archive
		sinks = append(sinks, archive)
		a.Log.Info("report archive ready", "bucket", a.Cfg.Archive.Bucket)
	}
	return sinks, nil
}

func (a *App) client(ctx context.Context, role string, cfg llm.Config) (llm.TextGenerator, error) {
	c, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init %s model: %w", role, err)
	}
	a.clients = append(a.clients, c)
	a.Log.Info("model client ready", "role", role, "provider", cfg.Provider, "model", cfg.Model)
	return llm.Observe(c, role, a.Log, a.Metrics), nil
}

// Router returns a gin engine serving the HTTP API.
func (a *App) Router() *gin.Engine {
	router := gin.New()
	var opts []api.HandlerOption
	if a.DB != nil {
		opts = append(opts, api.WithReports(a.DB))
	}
	handler := api.NewHandler(a.Pipeline, a.Chunker, a.Log, opts...)
	api.SetupRoutes(router, handler, a.Log, a.Metrics)
	return router
}

// Close releases the model clients and the report store.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
	for _, c := range a.clients {
		if err := c.Close(); err != nil {
			a.Log.Warn("closing model client", "error", err)
		}
	}
	a.clients = nil
}
