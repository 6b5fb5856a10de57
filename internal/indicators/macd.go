package indicators

// MACDResult holds the aligned MACD series
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes EMA(fast) - EMA(slow) and its EMA(signal) line.
// Needs slow+signal bars and fast < slow; otherwise every series is undefined.
func MACD(series []float64, fast, slow, signal int) MACDResult {
	n := len(series)
	res := MACDResult{
		Line:      undefined(n),
		Signal:    undefined(n),
		Histogram: undefined(n),
	}
	if fast <= 0 || fast >= slow || !hasBars(series, slow+signal) {
		return res
	}

	fastEMA := EMA(series, fast)
	slowEMA := EMA(series, slow)
	for i := 0; i < n; i++ {
		if IsFinite(fastEMA[i]) && IsFinite(slowEMA[i]) {
			res.Line[i] = fastEMA[i] - slowEMA[i]
		}
	}

	res.Signal = EMA(res.Line, signal)
	for i := 0; i < n; i++ {
		if IsFinite(res.Line[i]) && IsFinite(res.Signal[i]) {
			res.Histogram[i] = res.Line[i] - res.Signal[i]
		}
	}
	return res
}
