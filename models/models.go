package models

import (
	"errors"
	"time"
)

// ErrNoData is returned when a data source produced no candles.
var ErrNoData = errors.New("no candle data")

// Candle represents a single price candle
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// TwelveResponse represents the API response from Twelve Data
type TwelveResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   float64 `json:"volume,string,omitempty"`
	} `json:"values"`
	Status string `json:"status"`
}

// Direction of the next candle
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Confidence bands shown next to a prediction
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// PredictionResult is the record handed to the presentation layer
type PredictionResult struct {
	ID          string    `json:"prediction_id"`
	ModelID     string    `json:"model_id"`
	Direction   Direction `json:"direction"`
	Probability float64   `json:"probability"` // averaged positive-class probability
	Confidence  string    `json:"confidence"`
	BarTime     time.Time `json:"bar_time"` // time of the bar the prediction was made on
	Timestamp   time.Time `json:"timestamp"`
	Factors     []string  `json:"factors,omitempty"`
}

// TrainingResult reports a finished training run
type TrainingResult struct {
	ModelID   string    `json:"model_id"`
	Accuracy  float64   `json:"accuracy"` // held-out accuracy in [0,1]
	TrainRows int       `json:"train_rows"`
	TestRows  int       `json:"test_rows"`
	Features  int       `json:"features"`
	TrainedAt time.Time `json:"trained_at"`
}
