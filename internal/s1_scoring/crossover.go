package s1_scoring

import (
	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/indicators"
)

// Relation is the sign of a - b at one bar
type Relation int

const (
	Below Relation = iota - 1
	Equal
	Above
)

func relate(a, b float64) Relation {
	switch {
	case a > b:
		return Above
	case a < b:
		return Below
	default:
		return Equal
	}
}

// Cross is a strict (prev, now) transition; touching a line is not a cross
type Cross struct {
	Prev, Now Relation
}

var (
	crossUp   = Cross{Prev: Below, Now: Above}
	crossDown = Cross{Prev: Above, Now: Below}
)

// crossOf reports the transition of a against b over the last two bars
func crossOf(a, b []float64) (Cross, bool) {
	aPrev, aNow, okA := indicators.LastTwo(a)
	bPrev, bNow, okB := indicators.LastTwo(b)
	if !okA || !okB {
		return Cross{}, false
	}
	return Cross{Prev: relate(aPrev, bPrev), Now: relate(aNow, bNow)}, true
}

var macdTransitions = map[Cross]contracts.MACDSignal{
	crossUp:   contracts.MACDBullishCross,
	crossDown: contracts.MACDBearishCross,
}

// DetectMACDCross classifies the MACD line crossing its signal line at the latest bar
func DetectMACDCross(line, signal []float64) contracts.MACDSignal {
	c, ok := crossOf(line, signal)
	if !ok {
		return contracts.MACDUnavailable
	}
	if sig, hit := macdTransitions[c]; hit {
		return sig
	}
	return contracts.MACDNeutral
}

// DetectBandCross classifies the close crossing a Bollinger band.
// The lower band is checked first.
func DetectBandCross(closes []float64, bands indicators.BandsResult) contracts.BandSignal {
	lower, okLower := crossOf(closes, bands.Lower)
	upper, okUpper := crossOf(closes, bands.Upper)
	if !okLower || !okUpper {
		return contracts.BandUnavailable
	}

	switch {
	case lower == crossDown:
		return contracts.BandCrossLower
	case upper == crossUp:
		return contracts.BandCrossUpper
	default:
		return contracts.BandNeutral
	}
}
