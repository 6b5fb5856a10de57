package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/logger"
)

// Analyzer is satisfied by *s2_performance.Analyzer
type Analyzer interface {
	Analyze(ctx context.Context, windowDays int) (*contracts.AnalysisRun, error)
}

// BucketReader is the read side of contracts.BucketStore
type BucketReader interface {
	GetLatestBuckets(ctx context.Context) ([]contracts.BucketSummary, error)
}

// AnalysisHandler handles bucketed performance endpoints
type AnalysisHandler struct {
	analyzer      Analyzer
	buckets       BucketReader
	defaultWindow int
	logger        *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analyzer Analyzer, buckets BucketReader, defaultWindow int, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer:      analyzer,
		buckets:       buckets,
		defaultWindow: defaultWindow,
		logger:        log,
	}
}

// GetLatest returns the buckets of the most recent analysis
// GET /api/analysis/latest
func (h *AnalysisHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.buckets.GetLatestBuckets(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest buckets")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve analysis")
		return
	}
	if len(buckets) == 0 {
		respondError(w, http.StatusNotFound, "No analysis yet")
		return
	}

	respondJSON(w, http.StatusOK, buckets)
}

// AnalyzeRequest triggers an analysis run
type AnalyzeRequest struct {
	WindowDays *int `json:"window_days" validate:"omitempty,min=1,max=3650"` // default: configured window
}

// Run analyzes the trailing window and replaces today's rows
// POST /api/analysis/run
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	window := h.defaultWindow
	if req.WindowDays != nil {
		window = *req.WindowDays
	}

	run, err := h.analyzer.Analyze(r.Context(), window)
	if err != nil {
		h.logger.WithError(err).Error("Analysis failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, run)
}
