package s2_performance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/logger"
	"github.com/wonny/scorecard/pkg/metrics"
)

// Analyzer groups past scores into bands and measures their next-day returns
// ⭐ SSOT: 구간별 성과 분석은 여기서만
type Analyzer struct {
	scores  contracts.ScoreStore
	buckets contracts.BucketStore
	metrics *metrics.Recorder
	logger  *logger.Logger
	now     func() time.Time
}

// NewAnalyzer creates a new bucketed analyzer
func NewAnalyzer(scores contracts.ScoreStore, buckets contracts.BucketStore, rec *metrics.Recorder, log *logger.Logger) *Analyzer {
	return &Analyzer{
		scores:  scores,
		buckets: buckets,
		metrics: rec,
		logger:  log.WithComponent("s2_performance"),
		now:     time.Now,
	}
}

// Analyze aggregates pairs dated within [today-windowDays, today] and
// replaces today's bucket rows.
func (a *Analyzer) Analyze(ctx context.Context, windowDays int) (*contracts.AnalysisRun, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("window %d: %w", windowDays, contracts.ErrInvalidWindow)
	}

	today := contracts.NormalizeDate(a.now())
	from := today.AddDate(0, 0, -windowDays)

	pairs, err := a.scores.GetScoresInRange(ctx, from, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load score pairs: %w", err)
	}

	run := Aggregate(pairs)
	run.RunDate = today
	run.WindowDays = windowDays
	for i := range run.Buckets {
		run.Buckets[i].RunDate = today
		run.Buckets[i].WindowDays = windowDays
	}

	if err := a.buckets.ReplaceBuckets(ctx, today, run.Buckets); err != nil {
		return nil, fmt.Errorf("failed to save buckets: %w", err)
	}

	for _, b := range run.Buckets {
		a.metrics.SetBucket(b.Label, b.MeanForwardReturn, b.Count)
	}

	a.logger.WithFields(map[string]interface{}{
		"run_date":    today.Format("2006-01-02"),
		"window_days": windowDays,
		"samples":     run.Samples,
		"dropped":     run.Dropped,
	}).Info("Performance analysis completed")

	return run, nil
}

// Aggregate computes mean and count per band. Pairs with a non-finite
// score or return are dropped; empty bands keep a nil mean.
func Aggregate(pairs []contracts.ScorePair) *contracts.AnalysisRun {
	sums := make([]float64, len(Bands))
	counts := make([]int, len(Bands))
	run := &contracts.AnalysisRun{}

	for _, p := range pairs {
		if !finite(p.Score) || !finite(p.NextDayReturnPct) {
			run.Dropped++
			continue
		}
		idx, ok := BucketFor(p.Score)
		if !ok {
			run.Dropped++
			continue
		}
		sums[idx] += p.NextDayReturnPct
		counts[idx]++
		run.Samples++
	}

	run.Buckets = make([]contracts.BucketSummary, len(Bands))
	for i, b := range Bands {
		summary := contracts.BucketSummary{Label: b.Label, Count: counts[i]}
		if counts[i] > 0 {
			mean := sums[i] / float64(counts[i])
			summary.MeanForwardReturn = &mean
		}
		run.Buckets[i] = summary
	}
	return run
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
