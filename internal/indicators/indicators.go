// Package indicators implements technical indicators over daily series.
//
// Every function is pure. Positions where an indicator is undefined
// (not enough history, non-finite input) hold NaN; the scalar accessors
// Last and LastTwo report them with ok=false.
package indicators

import "math"

// hasBars is the single minimum-length guard used by every indicator
func hasBars(series []float64, n int) bool {
	return n > 0 && len(series) >= n
}

// IsFinite reports whether v is neither NaN nor ±Inf
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes the simple moving average over w bars.
// out[i] is defined iff i >= w-1 and every value in the window is finite.
func SMA(series []float64, w int) []float64 {
	out := undefined(len(series))
	if !hasBars(series, w) {
		return out
	}

	sum := 0.0
	bad := 0 // window 내 non-finite 개수
	for i, v := range series {
		if IsFinite(v) {
			sum += v
		} else {
			bad++
		}

		if i >= w {
			old := series[i-w]
			if IsFinite(old) {
				sum -= old
			} else {
				bad--
			}
		}

		if i >= w-1 && bad == 0 {
			out[i] = sum / float64(w)
		}
	}
	return out
}

// EMA computes the exponential moving average with multiplier 2/(p+1),
// seeded with the SMA of the first p consecutive finite values.
// A non-finite value after the seed makes the rest of the series undefined.
func EMA(series []float64, p int) []float64 {
	out := undefined(len(series))
	if !hasBars(series, p) {
		return out
	}

	seed := -1
	run := 0
	for i, v := range series {
		if IsFinite(v) {
			run++
		} else {
			run = 0
		}
		if run == p {
			seed = i
			break
		}
	}
	if seed < 0 {
		return out
	}

	sum := 0.0
	for i := seed - p + 1; i <= seed; i++ {
		sum += series[i]
	}
	ema := sum / float64(p)
	out[seed] = ema

	k := 2.0 / (float64(p) + 1.0)
	for i := seed + 1; i < len(series); i++ {
		v := series[i]
		if !IsFinite(v) {
			break
		}
		ema = v*k + ema*(1-k)
		out[i] = ema
	}
	return out
}

// Last returns the final value of series
func Last(series []float64) (float64, bool) {
	if len(series) == 0 {
		return math.NaN(), false
	}
	v := series[len(series)-1]
	return v, IsFinite(v)
}

// LastTwo returns the previous and final values of series
func LastTwo(series []float64) (prev, now float64, ok bool) {
	if !hasBars(series, 2) {
		return math.NaN(), math.NaN(), false
	}
	prev = series[len(series)-2]
	now = series[len(series)-1]
	return prev, now, IsFinite(prev) && IsFinite(now)
}
