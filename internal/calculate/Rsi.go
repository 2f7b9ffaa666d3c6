package calculate

import "math"

// RSI calculates the relative strength index over a trailing window.
//
// Gains and losses are averaged with a plain trailing mean. The first bar has no
// delta and counts as a zero move, so the first window-1 outputs are NaN.
// Zero average loss reads 100.
func RSI(series []float64, window int) []float64 {
	gains := make([]float64, len(series))
	losses := make([]float64, len(series))
	for i := 1; i < len(series); i++ {
		delta := series[i] - series[i-1]
		if math.IsNaN(delta) {
			continue
		}
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	avgGain := SMA(gains, window)
	avgLoss := SMA(losses, window)

	out := nanSeries(len(series))
	for i := range series {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}
		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}

	return out
}
