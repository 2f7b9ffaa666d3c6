package prediction

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Alias1177/CandlePredictor/internal/features"
	"github.com/Alias1177/CandlePredictor/models"
)

// Predict scores the latest complete row of ds with model.
// The dataset must have been built with the model's schema.
func Predict(model *Model, ds *features.Dataset) (*models.PredictionResult, error) {
	if model == nil {
		return nil, ErrNoModel
	}
	if ds == nil || ds.Latest == nil {
		return nil, ErrNoPrediction
	}
	if err := model.Schema.Check(ds.Schema); err != nil {
		return nil, err
	}

	scaled, err := model.Scaler.TransformRow(ds.Latest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	probability := model.Probability(scaled)
	direction := models.DirectionDown
	if probability > 0.5 {
		direction = models.DirectionUp
	}

	return &models.PredictionResult{
		ID:          uuid.NewString(),
		ModelID:     model.ID,
		Direction:   direction,
		Probability: probability,
		Confidence:  ConfidenceBand(probability),
		BarTime:     ds.LatestTime,
		Timestamp:   time.Now().UTC(),
		Factors:     explain(ds.Schema, ds.Latest),
	}, nil
}

// ConfidenceBand grades how far the winning side's probability is from a coin flip
func ConfidenceBand(probability float64) string {
	p := math.Max(probability, 1-probability)
	switch {
	case p > 0.7:
		return models.ConfidenceHigh
	case p > 0.6:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// explain lists the indicator readings worth showing next to a prediction
func explain(schema features.Schema, row []float64) []string {
	value := func(name string) (float64, bool) {
		for i, f := range schema.Fields {
			if f == name {
				return row[i], true
			}
		}
		return 0, false
	}

	var factors []string

	if rsi, ok := value("rsi"); ok {
		switch {
		case rsi > 70:
			factors = append(factors, fmt.Sprintf("RSI overbought at %.1f", rsi))
		case rsi < 30:
			factors = append(factors, fmt.Sprintf("RSI oversold at %.1f", rsi))
		}
	}

	macd, okMACD := value("macd")
	signal, okSignal := value("macd_signal")
	if okMACD && okSignal {
		if macd > signal {
			factors = append(factors, "MACD above signal line")
		} else if macd < signal {
			factors = append(factors, "MACD below signal line")
		}
	}

	if pos, ok := value("bb_position"); ok {
		switch {
		case pos > 1:
			factors = append(factors, "Price above upper Bollinger Band")
		case pos < 0:
			factors = append(factors, "Price below lower Bollinger Band")
		}
	}

	if k, ok := value("stoch_k"); ok {
		switch {
		case k > 80:
			factors = append(factors, fmt.Sprintf("Stochastic overbought at %.1f", k))
		case k < 20:
			factors = append(factors, fmt.Sprintf("Stochastic oversold at %.1f", k))
		}
	}

	return factors
}
