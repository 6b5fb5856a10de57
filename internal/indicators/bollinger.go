package indicators

import "math"

// BandsResult holds the aligned Bollinger band series
type BandsResult struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Bollinger computes SMA(w) ± k population standard deviations
func Bollinger(series []float64, w int, k float64) BandsResult {
	n := len(series)
	res := BandsResult{
		Middle: SMA(series, w),
		Upper:  undefined(n),
		Lower:  undefined(n),
	}
	if !hasBars(series, w) {
		return res
	}

	for i := w - 1; i < n; i++ {
		mean := res.Middle[i]
		if !IsFinite(mean) {
			continue
		}

		variance := 0.0
		for _, v := range series[i-w+1 : i+1] {
			d := v - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(w))

		res.Upper[i] = mean + k*std
		res.Lower[i] = mean - k*std
	}
	return res
}
