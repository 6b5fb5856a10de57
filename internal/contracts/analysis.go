package contracts

import "time"

// Bucket labels, lowest band first
const (
	BucketBelowMinus2  = "Score < -2"
	BucketMinus2ToZero = "-2 <= Score < 0"
	BucketZeroToTwo    = "0 <= Score < 2"
	BucketTwoToFour    = "2 <= Score < 4"
	BucketFourAndAbove = "Score >= 4"
)

// BucketLabels lists every band in ascending order
var BucketLabels = []string{
	BucketBelowMinus2,
	BucketMinus2ToZero,
	BucketZeroToTwo,
	BucketTwoToFour,
	BucketFourAndAbove,
}

// BucketSummary is the mean forward return of one score band for a run date
// ⭐ SSOT: (run_date, label) 당 하나, 실행마다 전체 교체
type BucketSummary struct {
	RunDate           time.Time `json:"run_date"`
	Label             string    `json:"label"`
	MeanForwardReturn *float64  `json:"mean_forward_return"` // nil when the band is empty
	Count             int       `json:"count"`
	WindowDays        int       `json:"window_days"`
}

// AnalysisRun is the result of one bucketed analysis
type AnalysisRun struct {
	RunDate    time.Time       `json:"run_date"`
	WindowDays int             `json:"window_days"`
	Samples    int             `json:"samples"`
	Dropped    int             `json:"dropped"` // non-finite pairs
	Buckets    []BucketSummary `json:"buckets"`
}

// ByLabel indexes buckets by label
func (a *AnalysisRun) ByLabel() map[string]BucketSummary {
	out := make(map[string]BucketSummary, len(a.Buckets))
	for _, b := range a.Buckets {
		out[b.Label] = b
	}
	return out
}
