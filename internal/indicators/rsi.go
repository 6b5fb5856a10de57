package indicators

// RSI computes the Relative Strength Index with Wilder smoothing.
// The first value is defined at index p and needs p+1 bars.
// Bounded to [0, 100]; with no losses it is 100, or 50 if there were no gains either.
func RSI(series []float64, p int) []float64 {
	out := undefined(len(series))
	if !hasBars(series, p+1) {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		if !IsFinite(prev) || !IsFinite(cur) {
			break
		}

		change := cur - prev
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		switch {
		case i < p:
			avgGain += gain
			avgLoss += loss
			continue
		case i == p:
			avgGain = (avgGain + gain) / float64(p)
			avgLoss = (avgLoss + loss) / float64(p)
		default:
			// Wilder smoothing
			avgGain = (avgGain*float64(p-1) + gain) / float64(p)
			avgLoss = (avgLoss*float64(p-1) + loss) / float64(p)
		}

		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
