package s2_performance

import (
	"math"

	"github.com/wonny/scorecard/internal/contracts"
)

// Band is a half-open score range [Lower, Upper)
type Band struct {
	Label string
	Lower float64
	Upper float64
}

// Contains reports Lower <= score < Upper
func (b Band) Contains(score float64) bool {
	return score >= b.Lower && score < b.Upper
}

// Bands partition the real line, lowest first
// ⭐ SSOT: 점수 구간은 여기서만
var Bands = []Band{
	{Label: contracts.BucketBelowMinus2, Lower: math.Inf(-1), Upper: -2},
	{Label: contracts.BucketMinus2ToZero, Lower: -2, Upper: 0},
	{Label: contracts.BucketZeroToTwo, Lower: 0, Upper: 2},
	{Label: contracts.BucketTwoToFour, Lower: 2, Upper: 4},
	{Label: contracts.BucketFourAndAbove, Lower: 4, Upper: math.Inf(1)},
}

// BucketFor returns the index of the only band claiming score.
// Non-finite scores belong to no band.
func BucketFor(score float64) (int, bool) {
	if !finite(score) {
		return -1, false
	}
	for i, b := range Bands {
		if b.Contains(score) {
			return i, true
		}
	}
	return -1, false
}
