package s1_scoring

import (
	"time"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/indicators"
)

// ForwardReturn is the next session's open and the close-to-open move in percent.
// Both stay nil until a bar after the target date exists.
type ForwardReturn struct {
	NextOpen  *float64
	ReturnPct *float64
}

// Known reports whether the forward return could be computed
func (f ForwardReturn) Known() bool {
	return f.ReturnPct != nil
}

// AttachForward finds the earliest bar strictly after target and computes
// (nextOpen - close) / close * 100. bars must be ordered by date.
func AttachForward(close float64, bars []contracts.PriceBar, target time.Time) ForwardReturn {
	if close <= 0 || !indicators.IsFinite(close) {
		return ForwardReturn{}
	}

	day := contracts.NormalizeDate(target)
	for _, b := range bars {
		if !contracts.NormalizeDate(b.Date).After(day) {
			continue
		}
		if !indicators.IsFinite(b.Open) {
			return ForwardReturn{}
		}
		open := b.Open
		pct := (open - close) / close * 100
		return ForwardReturn{NextOpen: &open, ReturnPct: &pct}
	}
	return ForwardReturn{}
}

// splitAt returns the bars dated on or before target and the rest
func splitAt(bars []contracts.PriceBar, target time.Time) (history, after []contracts.PriceBar) {
	day := contracts.NormalizeDate(target)
	for i, b := range bars {
		if contracts.NormalizeDate(b.Date).After(day) {
			return bars[:i], bars[i:]
		}
	}
	return bars, nil
}
