package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scorecard/internal/api/handlers"
	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/logger"
	"github.com/wonny/scorecard/pkg/metrics"
)

type fakeDriver struct {
	target time.Time
	ticker string
	err    error
}

func (f *fakeDriver) RunScoring(_ context.Context, target time.Time) (*contracts.ScoringRun, error) {
	f.target = target
	if f.err != nil {
		return nil, f.err
	}
	return &contracts.ScoringRun{RunID: "run-1", TargetDate: target, Written: 3, Errors: []string{}}, nil
}

func (f *fakeDriver) ScoreOne(_ context.Context, ticker string, target time.Time) (*contracts.ScoreRecord, error) {
	f.ticker, f.target = ticker, target
	if ticker == "NOPE" {
		return nil, contracts.ErrUnknownTicker
	}
	return &contracts.ScoreRecord{Ticker: ticker, Date: target, Score: 2}, nil
}

type fakeScores struct {
	latest  []contracts.ScoreRecord
	history map[string][]contracts.ScoreRecord
	limit   int
	err     error
}

func (f *fakeScores) GetLatestScores(_ context.Context, limit int) ([]contracts.ScoreRecord, error) {
	f.limit = limit
	return f.latest, f.err
}

func (f *fakeScores) GetScoreHistory(_ context.Context, ticker string, limit int) ([]contracts.ScoreRecord, error) {
	f.limit = limit
	return f.history[ticker], f.err
}

type fakeAnalyzer struct {
	window int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, windowDays int) (*contracts.AnalysisRun, error) {
	f.window = windowDays
	if windowDays <= 0 {
		return nil, contracts.ErrInvalidWindow
	}
	return &contracts.AnalysisRun{WindowDays: windowDays}, nil
}

type fakeBuckets struct {
	rows []contracts.BucketSummary
}

func (f *fakeBuckets) GetLatestBuckets(context.Context) ([]contracts.BucketSummary, error) {
	return f.rows, nil
}

type fixture struct {
	router   http.Handler
	driver   *fakeDriver
	scores   *fakeScores
	analyzer *fakeAnalyzer
	buckets  *fakeBuckets
}

func newFixture() *fixture {
	f := &fixture{
		driver: &fakeDriver{},
		scores: &fakeScores{
			latest:  []contracts.ScoreRecord{{Ticker: "AAA", Score: 4}},
			history: map[string][]contracts.ScoreRecord{"AAA": {{Ticker: "AAA", Score: 1}}},
		},
		analyzer: &fakeAnalyzer{},
		buckets:  &fakeBuckets{},
	}
	log := logger.NewNop()
	f.router = NewRouter(
		handlers.NewScoreHandler(f.driver, f.scores, nil, log),
		handlers.NewAnalysisHandler(f.analyzer, f.buckets, 90, log),
		metrics.New().Handler(),
		log,
	)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture()

	rec := f.do("GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = f.do("GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestGetLatestScores(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name   string
		path   string
		status int
		limit  int
	}{
		{"default limit", "/api/scores/latest", http.StatusOK, 20},
		{"explicit limit", "/api/scores/latest?limit=5", http.StatusOK, 5},
		{"zero limit", "/api/scores/latest?limit=0", http.StatusBadRequest, 0},
		{"garbage limit", "/api/scores/latest?limit=abc", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.scores.limit = 0
			rec := f.do("GET", tt.path, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.limit, f.scores.limit)
		})
	}

	rec := f.do("GET", "/api/scores/latest", "")
	var records []contracts.ScoreRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "AAA", records[0].Ticker)
}

func TestGetScoreHistory(t *testing.T) {
	f := newFixture()

	rec := f.do("GET", "/api/scores/aaa", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, f.scores.limit)

	rec = f.do("GET", "/api/scores/ZZZ", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScoresStoreFailure(t *testing.T) {
	f := newFixture()
	f.scores.err = errors.New("db down")

	rec := f.do("GET", "/api/scores/latest", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRunScoring(t *testing.T) {
	t.Run("explicit date", func(t *testing.T) {
		f := newFixture()
		rec := f.do("POST", "/api/scoring/run", `{"date":"2024-03-01"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), f.driver.target)

		var run contracts.ScoringRun
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
		assert.Equal(t, 3, run.Written)
	})

	t.Run("empty body defaults to yesterday", func(t *testing.T) {
		f := newFixture()
		rec := f.do("POST", "/api/scoring/run", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, f.driver.target.Before(time.Now()))
	})

	t.Run("single ticker", func(t *testing.T) {
		f := newFixture()
		rec := f.do("POST", "/api/scoring/run", `{"date":"2024-03-01","ticker":"aapl"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "AAPL", f.driver.ticker)
	})

	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed date", `{"date":"03/01/2024"}`, nil, http.StatusBadRequest},
		{"bad ticker", `{"ticker":"AA-PL!"}`, nil, http.StatusBadRequest},
		{"broken json", `{"date":`, nil, http.StatusBadRequest},
		{"unknown ticker", `{"ticker":"NOPE"}`, nil, http.StatusNotFound},
		{"future date", `{"date":"2024-03-01"}`, contracts.ErrInvalidDate, http.StatusBadRequest},
		{"persistence failure", `{"date":"2024-03-01"}`, errors.New("rolled back"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.driver.err = tt.err
			rec := f.do("POST", "/api/scoring/run", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestAnalysisEndpoints(t *testing.T) {
	f := newFixture()

	rec := f.do("GET", "/api/analysis/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.buckets.rows = []contracts.BucketSummary{{Label: contracts.BucketZeroToTwo, Count: 4}}
	rec = f.do("GET", "/api/analysis/latest", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do("POST", "/api/analysis/run", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 90, f.analyzer.window)

	rec = f.do("POST", "/api/analysis/run", `{"window_days":30}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, f.analyzer.window)

	rec = f.do("POST", "/api/analysis/run", `{"window_days":-5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
