package calculate

import "math"

// Stochastic calculates %K over kPeriod bars and %D as its dPeriod average.
// When the highest high equals the lowest low %K is 50.
func Stochastic(high, low, close []float64, kPeriod, dPeriod int) (k, d []float64) {
	lowest := RollingMin(low, kPeriod)
	highest := RollingMax(high, kPeriod)

	k = nanSeries(len(close))
	for i := range close {
		if math.IsNaN(lowest[i]) || math.IsNaN(highest[i]) || math.IsNaN(close[i]) {
			continue
		}
		if highest[i]-lowest[i] > 0 {
			k[i] = 100 * (close[i] - lowest[i]) / (highest[i] - lowest[i])
		} else {
			k[i] = 50.0 // If no range, default to middle
		}
	}

	d = SMA(k, dPeriod)
	return k, d
}

// WilliamsR is the %R oscillator in [-100, 0]; a flat window reads -50.
func WilliamsR(high, low, close []float64, period int) []float64 {
	lowest := RollingMin(low, period)
	highest := RollingMax(high, period)

	out := nanSeries(len(close))
	for i := range close {
		if math.IsNaN(lowest[i]) || math.IsNaN(highest[i]) || math.IsNaN(close[i]) {
			continue
		}
		if highest[i]-lowest[i] > 0 {
			out[i] = -100 * (highest[i] - close[i]) / (highest[i] - lowest[i])
		} else {
			out[i] = -50.0
		}
	}
	return out
}
