package s2_performance

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/logger"
	"github.com/wonny/scorecard/pkg/metrics"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		score float64
		label string
	}{
		{-100, contracts.BucketBelowMinus2},
		{-2.0001, contracts.BucketBelowMinus2},
		{-2, contracts.BucketMinus2ToZero},
		{-0.0001, contracts.BucketMinus2ToZero},
		{0, contracts.BucketZeroToTwo},
		{1.99, contracts.BucketZeroToTwo},
		{2, contracts.BucketTwoToFour},
		{3.999, contracts.BucketTwoToFour},
		{4, contracts.BucketFourAndAbove},
		{250, contracts.BucketFourAndAbove},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			idx, ok := BucketFor(tt.score)
			require.True(t, ok)
			assert.Equal(t, tt.label, Bands[idx].Label)
		})
	}

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, ok := BucketFor(v)
		assert.False(t, ok)
	}
}

func TestBands_ExactlyOneClaimsEachScore(t *testing.T) {
	for s := -6.0; s <= 6.0; s += 0.25 {
		claimed := 0
		for _, b := range Bands {
			if b.Contains(s) {
				claimed++
			}
		}
		assert.Equal(t, 1, claimed, "score %v", s)
	}
	for i, label := range contracts.BucketLabels {
		assert.Equal(t, label, Bands[i].Label)
	}
}

func TestAggregate(t *testing.T) {
	pairs := []contracts.ScorePair{
		{Score: -3, NextDayReturnPct: -1},
		{Score: -2, NextDayReturnPct: 0.5},
		{Score: -1, NextDayReturnPct: 1.5},
		{Score: 4, NextDayReturnPct: 2},
		{Score: 5, NextDayReturnPct: 4},
		{Score: math.NaN(), NextDayReturnPct: 1},
		{Score: 1, NextDayReturnPct: math.Inf(1)},
	}

	run := Aggregate(pairs)
	assert.Equal(t, 5, run.Samples)
	assert.Equal(t, 2, run.Dropped)
	require.Len(t, run.Buckets, 5)

	by := run.ByLabel()
	assert.Equal(t, 1, by[contracts.BucketBelowMinus2].Count)
	assert.InDelta(t, -1, *by[contracts.BucketBelowMinus2].MeanForwardReturn, 1e-9)
	assert.Equal(t, 2, by[contracts.BucketMinus2ToZero].Count)
	assert.InDelta(t, 1.0, *by[contracts.BucketMinus2ToZero].MeanForwardReturn, 1e-9)
	assert.Equal(t, 2, by[contracts.BucketFourAndAbove].Count)
	assert.InDelta(t, 3.0, *by[contracts.BucketFourAndAbove].MeanForwardReturn, 1e-9)

	// 표본 없는 구간도 행은 존재
	assert.Equal(t, 0, by[contracts.BucketZeroToTwo].Count)
	assert.Nil(t, by[contracts.BucketZeroToTwo].MeanForwardReturn)
	assert.Nil(t, by[contracts.BucketTwoToFour].MeanForwardReturn)
}

type fakeScores struct {
	contracts.ScoreStore
	pairs    []contracts.ScorePair
	err      error
	from, to time.Time
}

func (f *fakeScores) GetScoresInRange(_ context.Context, from, to time.Time) ([]contracts.ScorePair, error) {
	f.from, f.to = from, to
	return f.pairs, f.err
}

type memBuckets struct {
	rows map[time.Time][]contracts.BucketSummary
	err  error
}

func (m *memBuckets) ReplaceBuckets(_ context.Context, runDate time.Time, buckets []contracts.BucketSummary) error {
	if m.err != nil {
		return m.err
	}
	if m.rows == nil {
		m.rows = make(map[time.Time][]contracts.BucketSummary)
	}
	m.rows[runDate] = append([]contracts.BucketSummary(nil), buckets...)
	return nil
}

func (m *memBuckets) GetLatestBuckets(context.Context) ([]contracts.BucketSummary, error) {
	return nil, nil
}

var today = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func newTestAnalyzer(scores *fakeScores, buckets *memBuckets) *Analyzer {
	a := NewAnalyzer(scores, buckets, metrics.New(), logger.NewNop())
	a.now = func() time.Time { return today.Add(20 * time.Hour) }
	return a
}

func TestAnalyzer_Analyze(t *testing.T) {
	scores := &fakeScores{pairs: []contracts.ScorePair{
		{Ticker: "AAA", Score: 2.5, NextDayReturnPct: 1.2},
		{Ticker: "BBB", Score: -2, NextDayReturnPct: -0.4},
	}}
	buckets := &memBuckets{}
	a := newTestAnalyzer(scores, buckets)

	run, err := a.Analyze(context.Background(), 90)
	require.NoError(t, err)

	assert.True(t, scores.to.Equal(today))
	assert.True(t, scores.from.Equal(today.AddDate(0, 0, -90)))
	assert.Equal(t, 90, run.WindowDays)
	assert.Equal(t, 2, run.Samples)

	saved := buckets.rows[today]
	require.Len(t, saved, 5)
	for _, b := range saved {
		assert.True(t, b.RunDate.Equal(today))
		assert.Equal(t, 90, b.WindowDays)
	}
	assert.Equal(t, 1, run.ByLabel()[contracts.BucketMinus2ToZero].Count)
}

func TestAnalyzer_Idempotent(t *testing.T) {
	scores := &fakeScores{pairs: []contracts.ScorePair{{Score: 1, NextDayReturnPct: 0.3}}}
	buckets := &memBuckets{}
	a := newTestAnalyzer(scores, buckets)

	first, err := a.Analyze(context.Background(), 30)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, buckets.rows, 1)
	assert.Len(t, buckets.rows[today], 5)
}

func TestAnalyzer_Errors(t *testing.T) {
	t.Run("non-positive window", func(t *testing.T) {
		a := newTestAnalyzer(&fakeScores{}, &memBuckets{})
		for _, w := range []int{0, -5} {
			_, err := a.Analyze(context.Background(), w)
			assert.ErrorIs(t, err, contracts.ErrInvalidWindow)
		}
	})

	t.Run("load failure", func(t *testing.T) {
		boom := errors.New("db down")
		a := newTestAnalyzer(&fakeScores{err: boom}, &memBuckets{})
		_, err := a.Analyze(context.Background(), 90)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("save failure", func(t *testing.T) {
		boom := errors.New("rollback")
		a := newTestAnalyzer(&fakeScores{}, &memBuckets{err: boom})
		_, err := a.Analyze(context.Background(), 90)
		assert.ErrorIs(t, err, boom)
	})
}

func TestAnalyzer_EmptyWindowKeepsAllBands(t *testing.T) {
	buckets := &memBuckets{}
	a := newTestAnalyzer(&fakeScores{}, buckets)

	run, err := a.Analyze(context.Background(), 90)
	require.NoError(t, err)
	require.Len(t, run.Buckets, 5)
	for _, b := range run.Buckets {
		assert.Zero(t, b.Count)
		assert.Nil(t, b.MeanForwardReturn)
	}
}
