package strategyconfig

import (
	"fmt"
	"math"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Fetch ===
	if cfg.Fetch.LookbackDays <= 0 {
		return ValidationError{"fetch.lookback_days", "must be > 0"}
	}
	if cfg.Fetch.LookaheadDays <= 0 {
		return ValidationError{"fetch.lookahead_days", "must be > 0"}
	}

	f := cfg.Factors

	// === Windows ===
	windows := []struct {
		field string
		value int
	}{
		{"factors.momentum.days", f.Momentum.Days},
		{"factors.volume.avg_days", f.Volume.AvgDays},
		{"factors.ma_relation.period", f.MovingAverage.Period},
		{"factors.rsi.period", f.RSI.Period},
		{"factors.macd.fast", f.MACD.Fast},
		{"factors.macd.slow", f.MACD.Slow},
		{"factors.macd.signal", f.MACD.Signal},
		{"factors.bbands.window", f.Bollinger.Window},
	}
	for _, w := range windows {
		if w.value <= 0 {
			return ValidationError{w.field, "must be > 0"}
		}
	}
	if f.MACD.Fast >= f.MACD.Slow {
		return ValidationError{"factors.macd", "fast must be < slow"}
	}
	if f.Bollinger.StdDev < 0 || !isFinite(f.Bollinger.StdDev) {
		return ValidationError{"factors.bbands.std_dev", "must be >= 0"}
	}

	// === Thresholds ===
	if f.Sentiment.Negative > f.Sentiment.Positive {
		return ValidationError{"factors.sentiment", "negative must be <= positive"}
	}
	if f.Momentum.Negative > f.Momentum.Positive {
		return ValidationError{"factors.momentum", "negative_pct must be <= positive_pct"}
	}
	if f.Volume.Spike <= 0 {
		return ValidationError{"factors.volume.spike_ratio", "must be > 0"}
	}
	if f.RSI.Oversold < 0 || f.RSI.Overbought > 100 || f.RSI.Oversold >= f.RSI.Overbought {
		return ValidationError{"factors.rsi", "must satisfy 0 <= oversold < overbought <= 100"}
	}
	valuations := []struct {
		field string
		v     Valuation
	}{
		{"factors.pe_ratio", f.PERatio},
		{"factors.debt_equity", f.DebtToEquity},
		{"factors.pb_ratio", f.PBRatio},
		{"factors.ps_ratio", f.PSRatio},
	}
	for _, val := range valuations {
		if val.v.Low < 0 || val.v.Low > val.v.High {
			return ValidationError{val.field, "must satisfy 0 <= low <= high"}
		}
	}

	// === Weights ===
	for name, fc := range f.all() {
		if fc.Weight < 0 || !isFinite(fc.Weight) {
			return ValidationError{"factors." + name + ".weight", "must be a finite value >= 0"}
		}
	}

	// === Analysis ===
	if cfg.Analysis.WindowDays <= 0 {
		return ValidationError{"analysis.window_days", "must be > 0"}
	}

	return nil
}

// Warn returns recommendations that do not stop the program
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 거래일 ≈ calendar days × 5/7
	tradingDays := cfg.Fetch.LookbackDays * 5 / 7
	for name, need := range cfg.Factors.MinBars() {
		if need > tradingDays {
			warnings = append(warnings, Warning{
				Code:    "LOOKBACK_TOO_SHORT",
				Message: fmt.Sprintf("%s needs %d bars, lookback yields ~%d", name, need, tradingDays),
			})
		}
	}

	total := 0.0
	for _, fc := range cfg.Factors.all() {
		total += fc.Weight
	}
	if total == 0 {
		warnings = append(warnings, Warning{
			Code:    "ALL_WEIGHTS_ZERO",
			Message: "every factor weight is zero, all scores will be 0",
		})
	}

	return warnings
}

func (f Factors) all() map[string]Factor {
	return map[string]Factor{
		"sentiment":      f.Sentiment.Factor,
		"momentum":       f.Momentum.Factor,
		"volume":         f.Volume.Factor,
		"ma_relation":    f.MovingAverage.Factor,
		"rsi":            f.RSI.Factor,
		"macd":           f.MACD.Factor,
		"bbands":         f.Bollinger.Factor,
		"pe_ratio":       f.PERatio.Factor,
		"dividend_yield": f.DividendYield.Factor,
		"debt_equity":    f.DebtToEquity.Factor,
		"pb_ratio":       f.PBRatio.Factor,
		"ps_ratio":       f.PSRatio.Factor,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
