package s1_scoring

import (
	"math"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/indicators"
)

// Momentum returns the percent change over the last days bars.
// NaN when history is short or the starting close is zero.
func Momentum(closes []float64, days int) float64 {
	if days <= 0 || len(closes) < days+1 {
		return math.NaN()
	}
	now := closes[len(closes)-1]
	start := closes[len(closes)-1-days]
	if start == 0 || !indicators.IsFinite(start) || !indicators.IsFinite(now) {
		return math.NaN()
	}
	return (now - start) / start * 100
}

// VolumeRatio returns the latest volume over the mean of the avgDays before it.
// NaN when history is short. zeroAvg reports a zero average, which scores as
// normal volume rather than as missing data.
func VolumeRatio(volumes []float64, avgDays int) (ratio float64, zeroAvg bool) {
	if avgDays <= 0 || len(volumes) < avgDays+1 {
		return math.NaN(), false
	}
	latest := volumes[len(volumes)-1]

	sum := 0.0
	for _, v := range volumes[len(volumes)-1-avgDays : len(volumes)-1] {
		sum += v
	}
	avg := sum / float64(avgDays)
	if !indicators.IsFinite(avg) {
		return math.NaN(), false
	}
	if avg <= 0 {
		return math.NaN(), true
	}
	return latest / avg, false
}

// CompareToMA places the latest close against its period SMA.
// A close exactly on the average is reported as unavailable.
func CompareToMA(closes []float64, period int) contracts.MARelation {
	ma, ok := indicators.Last(indicators.SMA(closes, period))
	if !ok {
		return contracts.MAUnavailable
	}
	last := closes[len(closes)-1]
	switch {
	case last > ma:
		return contracts.MAAbove
	case last < ma:
		return contracts.MABelow
	default:
		return contracts.MAUnavailable
	}
}
