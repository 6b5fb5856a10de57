package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/logger"
	"github.com/wonny/scorecard/pkg/redis"
)

const (
	defaultLatestLimit  = redis.LatestScoresCachedLimit
	defaultHistoryLimit = 30
	maxLimit            = 500
)

// ScoringRunner is satisfied by *s1_scoring.Driver
type ScoringRunner interface {
	RunScoring(ctx context.Context, target time.Time) (*contracts.ScoringRun, error)
	ScoreOne(ctx context.Context, ticker string, target time.Time) (*contracts.ScoreRecord, error)
}

// ScoreReader is the read side of contracts.ScoreStore
type ScoreReader interface {
	GetLatestScores(ctx context.Context, limit int) ([]contracts.ScoreRecord, error)
	GetScoreHistory(ctx context.Context, ticker string, limit int) ([]contracts.ScoreRecord, error)
}

// ScoreHandler handles score endpoints
// ⭐ SSOT: 점수 API 핸들러는 여기서만
type ScoreHandler struct {
	driver ScoringRunner
	scores ScoreReader
	cache  *redis.Cache // optional
	logger *logger.Logger
	now    func() time.Time
}

// NewScoreHandler creates a new score handler. cache may be nil.
func NewScoreHandler(driver ScoringRunner, scores ScoreReader, cache *redis.Cache, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		driver: driver,
		scores: scores,
		cache:  cache,
		logger: log,
		now:    time.Now,
	}
}

// GetLatest returns the most recent day's scores, highest first
// GET /api/scores/latest?limit=20
func (h *ScoreHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, ok := queryLimit(r, defaultLatestLimit, maxLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid 'limit' (expected 1-500)")
		return
	}

	// 기본 limit 응답만 캐시
	cacheable := h.cache != nil && limit == defaultLatestLimit
	if cacheable {
		var cached []contracts.ScoreRecord
		if hit, err := h.cache.Get(ctx, redis.LatestScoresKey(limit), &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	records, err := h.scores.GetLatestScores(ctx, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest scores")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve scores")
		return
	}

	if cacheable {
		if err := h.cache.Set(ctx, redis.LatestScoresKey(limit), records, redis.TTLShort); err != nil {
			h.logger.WithError(err).Warn("Failed to cache latest scores")
		}
	}

	respondJSON(w, http.StatusOK, records)
}

// GetHistory returns one ticker's scores, newest first
// GET /api/scores/{ticker}?limit=30
func (h *ScoreHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	limit, ok := queryLimit(r, defaultHistoryLimit, maxLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid 'limit' (expected 1-500)")
		return
	}

	records, err := h.scores.GetScoreHistory(r.Context(), ticker, limit)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to get score history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve score history")
		return
	}
	if len(records) == 0 {
		respondError(w, http.StatusNotFound, "No scores for ticker")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// RunRequest triggers a scoring run
type RunRequest struct {
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"` // default: yesterday
	Ticker string `json:"ticker" validate:"omitempty,alphanum,max=16"`   // optional: score one instrument
}

// Run scores the universe (or one ticker) synchronously
// POST /api/scoring/run
func (h *ScoreHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RunRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	yesterday := contracts.NormalizeDate(h.now()).AddDate(0, 0, -1)
	target, err := parseDate(req.Date, yesterday)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"date":   target.Format(dateLayout),
		"ticker": req.Ticker,
	}).Info("Scoring triggered")

	if req.Ticker != "" {
		rec, err := h.driver.ScoreOne(ctx, strings.ToUpper(req.Ticker), target)
		if err != nil {
			h.logger.WithError(err).Warn("Single scoring failed")
			respondError(w, statusFor(err), err.Error())
			return
		}
		respondJSON(w, http.StatusOK, rec)
		return
	}

	run, err := h.driver.RunScoring(ctx, target)
	if err != nil {
		h.logger.WithError(err).Error("Scoring run failed")
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, run)
}
