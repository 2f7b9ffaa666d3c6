package calculate

import "math"

// SupportResistance places the close inside its trailing range:
// 0 at the window low, 1 at the window high, 0.5 when the range is flat.
func SupportResistance(close []float64, window int) []float64 {
	lowest := RollingMin(close, window)
	highest := RollingMax(close, window)

	out := nanSeries(len(close))
	for i := range close {
		if math.IsNaN(lowest[i]) || math.IsNaN(highest[i]) {
			continue
		}
		if highest[i] == lowest[i] {
			out[i] = 0.5
			continue
		}
		out[i] = (close[i] - lowest[i]) / (highest[i] - lowest[i])
	}
	return out
}

// Volatility is the sample standard deviation of bar-to-bar percent change
func Volatility(close []float64, window int) []float64 {
	return RollingStd(PctChange(close), window)
}
