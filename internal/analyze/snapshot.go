package analyze

import (
	"time"

	"github.com/Alias1177/CandlePredictor/internal/calculate"
	"github.com/Alias1177/CandlePredictor/models"
)

// Status is the displayable outcome of a refresh pass
type Status string

const (
	StatusNoData       Status = "no_data"
	StatusInsufficient Status = "insufficient_history"
	StatusNoPrediction Status = "no_prediction"
	StatusOK           Status = "ok"
)

// Snapshot is everything one refresh pass produced. A nil Training or
// Prediction means the stage was unavailable; the matching *Error field says why.
type Snapshot struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Status   Status `json:"status"`

	Frame *calculate.Frame `json:"-"`

	Training      *models.TrainingResult   `json:"training,omitempty"`
	TrainingError string                   `json:"training_error,omitempty"`
	Prediction    *models.PredictionResult `json:"prediction,omitempty"`
	PredictError  string                   `json:"prediction_error,omitempty"`

	Signal  string         `json:"signal,omitempty"`
	Market  *MarketContext `json:"market,omitempty"`
	Bars    int            `json:"bars"`
	Updated time.Time      `json:"updated_at"`
}
