package calculate

import "math"

// EMA calculates the exponentially weighted mean with alpha = 2/(span+1).
//
// Every prior value contributes; weights are normalised by their running sum so
// early outputs are not biased toward zero. Output starts at the first defined
// input. A NaN input keeps the previous mean while the weights keep decaying.
func EMA(series []float64, span int) []float64 {
	out := nanSeries(len(series))
	if span < 1 {
		return out
	}

	alpha := 2.0 / float64(span+1)
	decay := 1 - alpha

	var num, den float64
	started := false
	for i, x := range series {
		if math.IsNaN(x) {
			num *= decay
			den *= decay
			if started {
				out[i] = num / den
			}
			continue
		}
		num = x + decay*num
		den = 1 + decay*den
		started = true
		out[i] = num / den
	}

	return out
}
