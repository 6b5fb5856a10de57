package contracts

import (
	"context"
	"time"
)

// PriceProvider returns daily bars within [from, to], ordered by date
// ⭐ SSOT: 가격 데이터 조회 인터페이스
type PriceProvider interface {
	GetBars(ctx context.Context, ticker string, from, to time.Time) ([]PriceBar, error)
}

// FundamentalsProvider returns the latest valuation snapshot; nil when unknown
type FundamentalsProvider interface {
	GetFundamentals(ctx context.Context, ticker string) (*FundamentalSnapshot, error)
}

// SentimentProvider returns the sentiment dated exactly date; nil when absent
type SentimentProvider interface {
	GetSentiment(ctx context.Context, ticker string, date time.Time) (*float64, error)
}

// TickerProvider lists the tracked universe
type TickerProvider interface {
	ListTickers(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, ticker string) (bool, error)
}

// ScoreStore persists daily scores
// ⭐ SSOT: 점수 저장 인터페이스
type ScoreStore interface {
	// UpsertScores writes all records in one transaction, keyed by (ticker, date)
	UpsertScores(ctx context.Context, records []ScoreRecord) error
	// GetScoresInRange returns pairs with a known forward return dated within [from, to]
	GetScoresInRange(ctx context.Context, from, to time.Time) ([]ScorePair, error)
	GetPendingForward(ctx context.Context, since time.Time) ([]ScoreKey, error)
	// UpdateForward only touches the forward-return fields
	UpdateForward(ctx context.Context, updates []ForwardUpdate) error
	GetLatestScores(ctx context.Context, limit int) ([]ScoreRecord, error)
	GetScoreHistory(ctx context.Context, ticker string, limit int) ([]ScoreRecord, error)
}

// BucketStore persists bucket summaries
type BucketStore interface {
	// ReplaceBuckets deletes the run date's rows and inserts the given ones atomically
	ReplaceBuckets(ctx context.Context, runDate time.Time, buckets []BucketSummary) error
	GetLatestBuckets(ctx context.Context) ([]BucketSummary, error)
}
