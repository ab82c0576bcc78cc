package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mcqengine/internal/chunker"
	"mcqengine/internal/db"
	"mcqengine/internal/logger"
	"mcqengine/internal/models"
)

// Runner runs a batch of sections through the MCQ pipeline
type Runner interface {
	RunAllWithReport(ctx context.Context, sections []models.Section) (models.BatchReport, error)
}

// ReportReader loads a stored batch report by run ID
type ReportReader interface {
	GetReport(ctx context.Context, runID string) (models.BatchReport, error)
}

// Handler contains the API handlers
type Handler struct {
	pipeline Runner
	reports  ReportReader
	chunker  *chunker.Chunker
	log      *logger.Logger
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithReports serves stored runs from r
func WithReports(r ReportReader) HandlerOption {
	return func(h *Handler) { h.reports = r }
}

// NewHandler creates a new Handler
func NewHandler(pipeline Runner, c *chunker.Chunker, log *logger.Logger, opts ...HandlerOption) *Handler {
	if c == nil {
		c = chunker.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	h := &Handler{pipeline: pipeline, chunker: c, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GenerateRequest carries either raw text, which is cleaned and chunked, or
// sections that are used as they are.
type GenerateRequest struct {
	Text     string   `json:"text"`
	Sections []string `json:"sections"`
}

// Summary is the batch report without the MCQs themselves
type Summary struct {
	RunID      string             `json:"run_id"`
	Sections   int                `json:"sections"`
	Accepted   int                `json:"accepted"`
	Rejected   int                `json:"rejected"`
	Rejections []models.Rejection `json:"rejections,omitempty"`
	Warnings   int                `json:"warnings"`
}

// GenerateResponse is returned by HandleGenerateMCQs
type GenerateResponse struct {
	Results []models.MCQ `json:"results"`
	Report  Summary      `json:"report"`
}

// SectionsResponse is returned by HandlePreviewSections
type SectionsResponse struct {
	Sections []models.Section `json:"sections"`
}

func (h *Handler) sections(req GenerateRequest) []models.Section {
	if len(req.Sections) > 0 {
		out := make([]models.Section, len(req.Sections))
		for i, s := range req.Sections {
			out[i] = models.Section(s)
		}
		return out
	}
	return h.chunker.Split(req.Text)
}

// HandleGenerateMCQs runs the pipeline over the request body and returns the
// accepted MCQs along with the accept/reject summary.
func (h *Handler) HandleGenerateMCQs(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, newAPIError(http.StatusBadRequest, "invalid_body", err))
		return
	}

	sections := h.sections(req)
	h.log.Info("generating MCQs", "sections", len(sections))

	report, err := h.pipeline.RunAllWithReport(c.Request.Context(), sections)
	if err != nil {
		h.log.Error("MCQ generation failed", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Results: report.MCQs,
		Report: Summary{
			RunID:      report.RunID,
			Sections:   len(sections),
			Accepted:   report.Accepted,
			Rejected:   report.Rejected,
			Rejections: report.Rejections,
			Warnings:   report.Warnings,
		},
	})
}

// HandleGetRun returns a stored batch report
func (h *Handler) HandleGetRun(c *gin.Context) {
	if h.reports == nil {
		respondError(c, newAPIError(http.StatusNotImplemented, "store_disabled", errors.New("report store not configured")))
		return
	}

	runID := c.Param("runId")
	report, err := h.reports.GetReport(c.Request.Context(), runID)
	if errors.Is(err, db.ErrNotFound) {
		respondError(c, newAPIError(http.StatusNotFound, "not_found", err))
		return
	}
	if err != nil {
		h.log.Error("loading run failed", "run_id", runID, "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandlePreviewSections returns the sections raw text would be split into
func (h *Handler) HandlePreviewSections(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, newAPIError(http.StatusBadRequest, "invalid_body", err))
		return
	}
	c.JSON(http.StatusOK, SectionsResponse{Sections: h.chunker.Split(req.Text)})
}

// HandleHealth reports liveness
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
