package calculate

import "math"

// BollingerBands calculates mean ± k standard deviations over a trailing window
func BollingerBands(series []float64, window int, k float64) (upper, mid, lower []float64) {
	mid = SMA(series, window)
	sd := RollingStd(series, window)

	upper = nanSeries(len(series))
	lower = nanSeries(len(series))
	for i := range series {
		upper[i] = mid[i] + k*sd[i]
		lower[i] = mid[i] - k*sd[i]
	}

	return upper, mid, lower
}

// BandPosition locates value inside the bands: 0 at lower, 1 at upper.
// Zero-width bands read 0.5.
func BandPosition(value, upper, lower []float64) []float64 {
	out := nanSeries(len(value))
	for i := range value {
		width := upper[i] - lower[i]
		switch {
		case math.IsNaN(width) || math.IsNaN(value[i]):
		case width == 0:
			out[i] = 0.5
		default:
			out[i] = (value[i] - lower[i]) / width
		}
	}
	return out
}
