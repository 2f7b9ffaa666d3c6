package calculate

import "math"

// OBV calculates on-balance volume, seeded with the first bar's volume
func OBV(close, volume []float64) []float64 {
	out := nanSeries(len(close))
	if len(close) == 0 {
		return out
	}

	obv := volume[0]
	out[0] = obv
	for i := 1; i < len(close); i++ {
		if math.IsNaN(close[i]) || math.IsNaN(close[i-1]) {
			out[i] = obv
			continue
		}
		if close[i] > close[i-1] {
			// Price up, add volume
			obv += volume[i]
		} else if close[i] < close[i-1] {
			// Price down, subtract volume
			obv -= volume[i]
		}
		out[i] = obv
	}

	return out
}

// ATR calculates the average true range as a simple mean of true ranges
func ATR(high, low, close []float64, period int) []float64 {
	tr := nanSeries(len(close))
	for i := range close {
		highLow := high[i] - low[i]
		if i == 0 {
			tr[i] = highLow
			continue
		}
		highPrevClose := math.Abs(high[i] - close[i-1])
		lowPrevClose := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(highLow, math.Max(highPrevClose, lowPrevClose))
	}
	return SMA(tr, period)
}
