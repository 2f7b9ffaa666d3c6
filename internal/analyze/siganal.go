package analyze

import (
	"math"

	"github.com/Alias1177/CandlePredictor/internal/calculate"
)

// DetermineTradeSignal votes the latest indicator readings into a rule-based
// signal shown next to the model's prediction
func DetermineTradeSignal(rsi, macd, macdHist, price, bbUpper, bbLower, stochK, stochD, ema float64) string {
	bullishSignals := 0
	bearishSignals := 0

	// RSI
	if rsi < 30 {
		bullishSignals += 2
	} else if rsi < 40 {
		bullishSignals++
	} else if rsi > 70 {
		bearishSignals += 2
	} else if rsi > 60 {
		bearishSignals++
	}

	// MACD histogram
	if macdHist > 0 && macdHist > macd*0.1 {
		bullishSignals++
		if macdHist > macd*0.2 && macd > 0 {
			bullishSignals++
		}
	} else if macdHist < 0 && macdHist < macd*0.1 {
		bearishSignals++
		if macdHist < macd*0.2 && macd < 0 {
			bearishSignals++
		}
	}

	// Bollinger Bands
	if price < bbLower {
		bullishSignals++
	} else if price > bbUpper {
		bearishSignals++
	}

	// Stochastic turning out of an extreme
	if stochK < 20 && stochD < 20 && stochK > stochD {
		bullishSignals++
	} else if stochK > 80 && stochD > 80 && stochK < stochD {
		bearishSignals++
	}

	if price > ema {
		bullishSignals++
	} else if price < ema {
		bearishSignals++
	}

	netSignal := bullishSignals - bearishSignals

	switch {
	case netSignal >= 4:
		return "STRONG_BUY"
	case netSignal >= 2:
		return "BUY"
	case netSignal <= -4:
		return "STRONG_SELL"
	case netSignal <= -2:
		return "SELL"
	default:
		return "NEUTRAL"
	}
}

// frameSignal runs DetermineTradeSignal on the last bar; empty while any input is still warming up
func frameSignal(f *calculate.Frame) string {
	i := f.Len() - 1
	if i < 0 {
		return ""
	}
	inputs := []float64{f.RSI[i], f.MACD[i], f.MACDHist[i], f.Close[i], f.BBUpper[i], f.BBLower[i], f.StochK[i], f.StochD[i], f.EMAFast[i]}
	for _, v := range inputs {
		if math.IsNaN(v) {
			return ""
		}
	}
	return DetermineTradeSignal(inputs[0], inputs[1], inputs[2], inputs[3], inputs[4], inputs[5], inputs[6], inputs[7], inputs[8])
}
