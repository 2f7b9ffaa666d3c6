package analyze

import (
	"math"

	"github.com/Alias1177/CandlePredictor/internal/calculate"
)

// MarketContext describes the tape around the latest bar
type MarketContext struct {
	OrderFlow        string   `json:"order_flow"`
	VWAP             float64  `json:"vwap"`
	VolatilityRegime string   `json:"volatility_regime"`
	ExpectedMove     float64  `json:"expected_move"`
	Structure        string   `json:"structure"`
	Trend            string   `json:"trend"`
	Momentum         float64  `json:"momentum"` // strength in [0,1]
	Patterns         []string `json:"patterns,omitempty"`
	Anomaly          *Anomaly `json:"anomaly,omitempty"`
}

const flowBars = 5

// analyzeOrderFlow splits the volume of the last bars by candle colour
func analyzeOrderFlow(f *calculate.Frame) (string, float64) {
	n := f.Len()
	if n < flowBars {
		return "NO_VOLUME_DATA", 0
	}
	for _, v := range f.Volume[n-flowBars:] {
		if v == 0 {
			return "NO_VOLUME_DATA", 0
		}
	}

	var totalVolume, volumeWeightedPrice, upVolume, downVolume float64
	for i := n - flowBars; i < n; i++ {
		volumeWeightedPrice += f.Close[i] * f.Volume[i]
		totalVolume += f.Volume[i]
		if f.Close[i] > f.Open[i] {
			upVolume += f.Volume[i]
		} else {
			downVolume += f.Volume[i]
		}
	}
	volumeWeightedPrice /= totalVolume

	volumeRatio := upVolume / (upVolume + downVolume)

	flowDirection := "NEUTRAL"
	if volumeRatio > 0.65 {
		flowDirection = "BULLISH"
	} else if volumeRatio < 0.35 {
		flowDirection = "BEARISH"
	}

	return flowDirection, volumeWeightedPrice
}

// assessVolatilityConditions compares short and long ATR
func assessVolatilityConditions(f *calculate.Frame) (string, float64) {
	n := f.Len()
	if n == 0 {
		return "UNKNOWN", 0
	}
	atr5 := calculate.ATR(f.High, f.Low, f.Close, 5)[n-1]
	atr20 := calculate.ATR(f.High, f.Low, f.Close, 20)[n-1]
	if math.IsNaN(atr5) {
		return "UNKNOWN", 0
	}
	if math.IsNaN(atr20) || atr20 == 0 {
		return "UNKNOWN", atr5
	}

	volatilityRatio := atr5 / atr20

	volatilityRegime := "NORMAL"
	if volatilityRatio > 1.5 {
		volatilityRegime = "HIGH"
	} else if volatilityRatio < 0.7 {
		volatilityRegime = "LOW"
	}

	return volatilityRegime, atr5
}

const regimeBars = 20

// classifyStructure scores weighted momentum and measures the 20-bar range in ATRs
func classifyStructure(f *calculate.Frame) (structure, trend string, strength float64) {
	n := f.Len()
	if n <= regimeBars {
		return "UNKNOWN", "NEUTRAL", 0
	}

	current := f.Close[n-1]
	change := func(back int) float64 {
		prev := f.Close[n-1-back]
		if prev == 0 {
			return 0
		}
		return (current - prev) / prev
	}
	score := change(5)*0.5 + change(10)*0.3 + change(20)*0.2
	strength = math.Min(math.Abs(score)*10, 1.0)

	trend = "NEUTRAL"
	if score > 0 {
		trend = "BULLISH"
	} else if score < 0 {
		trend = "BEARISH"
	}

	atr10 := calculate.ATR(f.High, f.Low, f.Close, 10)[n-1]
	if math.IsNaN(atr10) || atr10 == 0 {
		return "UNKNOWN", trend, strength
	}

	highest := calculate.RollingMax(f.High, regimeBars)[n-1]
	lowest := calculate.RollingMin(f.Low, regimeBars)[n-1]
	if (highest-lowest)/atr10 < 5.0 {
		return "RANGING", trend, strength
	}

	var directionalChanges int
	prevUp := f.Close[n-regimeBars] > f.Close[n-regimeBars-1]
	for i := n - regimeBars + 1; i < n; i++ {
		up := f.Close[i] > f.Close[i-1]
		if up != prevUp {
			directionalChanges++
			prevUp = up
		}
	}
	if directionalChanges > 8 {
		return "CHOPPY", trend, strength
	}

	return "TRENDING", trend, strength
}

func marketContext(f *calculate.Frame) *MarketContext {
	flow, vwap := analyzeOrderFlow(f)
	regime, move := assessVolatilityConditions(f)
	structure, trend, momentum := classifyStructure(f)
	return &MarketContext{
		OrderFlow:        flow,
		VWAP:             vwap,
		VolatilityRegime: regime,
		ExpectedMove:     move,
		Structure:        structure,
		Trend:            trend,
		Momentum:         momentum,
		Patterns:         candlePatterns(f.Candles),
		Anomaly:          detectAnomaly(f),
	}
}
