package analyze

import (
	"math"

	"github.com/Alias1177/CandlePredictor/models"
)

const patternBars = 5

// candlePatterns names the price action patterns formed by the last bars
func candlePatterns(candles []models.Candle) []string {
	if len(candles) < patternBars {
		return nil
	}

	recent := candles[len(candles)-patternBars:]
	c3, c4, c5 := recent[2], recent[3], recent[4]

	body := func(c models.Candle) float64 { return math.Abs(c.Close - c.Open) }
	bullish := func(c models.Candle) bool { return c.Close > c.Open }

	var avgBody float64
	for _, c := range recent {
		avgBody += body(c)
	}
	avgBody /= patternBars

	body4, body5 := body(c4), body(c5)
	upperWick := c5.High - math.Max(c5.Open, c5.Close)
	lowerWick := math.Min(c5.Open, c5.Close) - c5.Low

	var patterns []string

	if bullish(c5) && !bullish(c4) && c5.Open < c4.Close && c5.Close > c4.Open && body5 > body4*1.2 {
		patterns = append(patterns, "BULLISH_ENGULFING")
	}
	if !bullish(c5) && bullish(c4) && c5.Open > c4.Close && c5.Close < c4.Open && body5 > body4*1.2 {
		patterns = append(patterns, "BEARISH_ENGULFING")
	}

	if lowerWick > body5*2 && upperWick < body5*0.5 {
		patterns = append(patterns, "HAMMER")
	}
	if upperWick > body5*2 && lowerWick < body5*0.5 {
		patterns = append(patterns, "SHOOTING_STAR")
	}

	if bullish(c3) && bullish(c4) && bullish(c5) {
		patterns = append(patterns, "THREE_WHITE_SOLDIERS")
	}
	if !bullish(c3) && !bullish(c4) && !bullish(c5) {
		patterns = append(patterns, "THREE_BLACK_CROWS")
	}

	if body5 < avgBody*0.3 && (upperWick > body5 || lowerWick > body5) {
		patterns = append(patterns, "DOJI")
	}

	if body5 > avgBody*1.5 && lowerWick < body5*0.2 && upperWick < body5*0.2 {
		if bullish(c5) {
			patterns = append(patterns, "STRONG_BULLISH_MOMENTUM")
		} else {
			patterns = append(patterns, "STRONG_BEARISH_MOMENTUM")
		}
	}

	// star reversals: large body, small middle body gapping away, large opposite body
	midpoint3 := c3.Open + (c3.Close-c3.Open)/2
	smallMiddle := body4 < avgBody*0.3
	if bullish(c3) && body(c3) > avgBody && smallMiddle && c4.Open > c3.Close &&
		!bullish(c5) && body5 > avgBody && c5.Close < midpoint3 {
		patterns = append(patterns, "EVENING_STAR")
	}
	if !bullish(c3) && body(c3) > avgBody && smallMiddle && c4.Open < c3.Close &&
		bullish(c5) && body5 > avgBody && c5.Close > midpoint3 {
		patterns = append(patterns, "MORNING_STAR")
	}

	return patterns
}
