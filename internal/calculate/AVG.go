package calculate

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// nanSeries returns a slice of n undefined values
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// windowDefined reports whether window has no NaN values
func windowDefined(window []float64) bool {
	for _, v := range window {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// rolling applies fn to every trailing window of the given size. Outputs stay
// NaN for the first window-1 positions and wherever the window holds a NaN.
func rolling(series []float64, window int, fn func([]float64) float64) []float64 {
	out := nanSeries(len(series))
	if window < 1 {
		return out
	}
	for i := window - 1; i < len(series); i++ {
		w := series[i-window+1 : i+1]
		if !windowDefined(w) {
			continue
		}
		out[i] = fn(w)
	}
	return out
}

// SMA calculates the simple moving average over a trailing window
func SMA(series []float64, window int) []float64 {
	return rolling(series, window, func(w []float64) float64 {
		return stat.Mean(w, nil)
	})
}

// RollingStd is the trailing sample standard deviation (n-1 denominator).
// A window of one has no sample deviation and stays NaN.
func RollingStd(series []float64, window int) []float64 {
	if window < 2 {
		return nanSeries(len(series))
	}
	return rolling(series, window, func(w []float64) float64 {
		return stat.StdDev(w, nil)
	})
}

// RollingMin is the trailing minimum
func RollingMin(series []float64, window int) []float64 {
	return rolling(series, window, func(w []float64) float64 {
		m := w[0]
		for _, v := range w[1:] {
			if v < m {
				m = v
			}
		}
		return m
	})
}

// RollingMax is the trailing maximum
func RollingMax(series []float64, window int) []float64 {
	return rolling(series, window, func(w []float64) float64 {
		m := w[0]
		for _, v := range w[1:] {
			if v > m {
				m = v
			}
		}
		return m
	})
}

// Shift moves the series back by n bars: out[i] = series[i-n].
func Shift(series []float64, n int) []float64 {
	out := nanSeries(len(series))
	if n < 0 {
		return out
	}
	for i := n; i < len(series); i++ {
		out[i] = series[i-n]
	}
	return out
}

// PctChange is the fractional change against the previous bar.
// 0 -> 0 counts as no change; a move away from zero is undefined.
func PctChange(series []float64) []float64 {
	out := nanSeries(len(series))
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		switch {
		case math.IsNaN(prev) || math.IsNaN(cur):
		case prev == 0 && cur == 0:
			out[i] = 0
		case prev == 0:
		default:
			out[i] = (cur - prev) / prev
		}
	}
	return out
}
