package analyze

import (
	"fmt"
	"math"

	"github.com/Alias1177/CandlePredictor/internal/calculate"
)

// Anomaly flags an unusual latest bar
type Anomaly struct {
	Type    string  `json:"type"`
	Score   float64 `json:"score"` // severity in [0,1]
	Details string  `json:"details"`
}

const (
	anomalyMinBars  = 20
	anomalyBaseline = 50
)

// detectAnomaly checks the latest bar for price and volume spikes, gaps and
// volatility breakouts. It returns nil when nothing stands out.
func detectAnomaly(f *calculate.Frame) *Anomaly {
	n := f.Len()
	if n < anomalyMinBars {
		return nil
	}

	atr10 := calculate.ATR(f.High, f.Low, f.Close, 10)[n-1]
	if math.IsNaN(atr10) || atr10 == 0 {
		return nil
	}
	baseline := anomalyBaseline
	if baseline > n-1 {
		baseline = n - 1
	}
	atrBase := calculate.ATR(f.High, f.Low, f.Close, baseline)[n-1]

	var a *Anomaly
	escalate := func(kind string, bump, score float64, details string) {
		if a != nil {
			a.Score = math.Min(a.Score+bump, 1.0)
			a.Type += "_WITH_" + kind
			return
		}
		a = &Anomaly{Type: kind, Score: math.Min(score, 1.0), Details: details}
	}

	prevClose := f.Close[n-2]
	priceMove := math.Abs(f.Close[n-1]-prevClose) / atr10
	if priceMove > 3.0 {
		a = &Anomaly{
			Type:    "PRICE_SPIKE",
			Score:   math.Min(priceMove/3.0, 1.0),
			Details: fmt.Sprintf("Price moved %.1f times the normal range", priceMove),
		}
	}

	if v := f.Volume[n-1]; v > 0 {
		var total float64
		for _, prev := range f.Volume[n-11 : n-1] {
			total += prev
		}
		if avg := total / 10; avg > 0 {
			if ratio := v / avg; ratio > 3.0 {
				escalate("VOLUME_SPIKE", 0.2, ratio/5.0, fmt.Sprintf("Volume %.1f times the average", ratio))
			}
		}
	}

	var gap float64
	if f.Low[n-1] > prevClose {
		gap = f.Low[n-1] - prevClose
	} else if f.High[n-1] < prevClose {
		gap = prevClose - f.High[n-1]
	}
	if gapRatio := gap / atr10; gapRatio > 1.0 {
		escalate("GAP", 0.15, gapRatio/2.0, fmt.Sprintf("Price gapped %.1f times the average range", gapRatio))
	}

	if !math.IsNaN(atrBase) && atrBase > 0 {
		if ratio := atr10 / atrBase; ratio > 2.5 {
			if a != nil {
				a.Score = math.Min(a.Score+0.1, 1.0)
			} else {
				a = &Anomaly{
					Type:    "VOLATILITY_BREAKOUT",
					Score:   math.Min(ratio/4.0, 1.0),
					Details: fmt.Sprintf("Recent volatility %.1f times the baseline", ratio),
				}
			}
		}
	}

	return a
}
