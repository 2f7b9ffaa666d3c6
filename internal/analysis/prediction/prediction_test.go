package prediction

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/CandlePredictor/internal/calculate"
	"github.com/Alias1177/CandlePredictor/internal/features"
	"github.com/Alias1177/CandlePredictor/models"
)

func generateTestCandles(n int, closeAt func(int) float64) []models.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		c := closeAt(i)
		candles[i] = models.Candle{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}
	return candles
}

func randomCandles(n int, seed int64) []models.Candle {
	rng := rand.New(rand.NewSource(seed))
	price := 45000.0
	candles := generateTestCandles(n, func(int) float64 { return 0 })
	for i := range candles {
		open := price
		price *= 1 + rng.NormFloat64()*0.02
		candles[i].Open = open
		candles[i].Close = price
		candles[i].High = math.Max(open, price) * 1.005
		candles[i].Low = math.Min(open, price) * 0.995
		candles[i].Volume = float64(1000 + rng.Intn(9000))
	}
	return candles
}

// zigZag climbs 2.5 then dips 0.5, so every bar's move is followed by the opposite one
func zigZag(i int) float64 {
	return 100 + float64(i) + 1.5*float64((i+1)%2)
}

func dataset(t *testing.T, candles []models.Candle, params calculate.Params) *features.Dataset {
	t.Helper()
	frame, err := calculate.Annotate(candles, params)
	require.NoError(t, err)
	ds, err := features.Build(frame)
	require.NoError(t, err)
	return ds
}

func TestTrainAndPredictZigZag(t *testing.T) {
	ds := dataset(t, generateTestCandles(200, zigZag), calculate.DefaultParams())

	model, result, err := Train(ds, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Accuracy)
	assert.Equal(t, model.ID, result.ModelID)
	assert.Equal(t, ds.Rows(), result.TrainRows+result.TestRows)
	assert.Equal(t, 30, result.TestRows)
	assert.Equal(t, ds.Schema.Len(), result.Features)

	// bar 199 just dipped, so the next bar climbs
	pred, err := Predict(model, ds)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionUp, pred.Direction)
	assert.GreaterOrEqual(t, pred.Probability, 0.9)
	assert.Equal(t, models.ConfidenceHigh, pred.Confidence)
	assert.Equal(t, model.ID, pred.ModelID)
	assert.Equal(t, ds.LatestTime, pred.BarTime)
	assert.NotEmpty(t, pred.ID)
}

func TestTrainIsDeterministic(t *testing.T) {
	ds := dataset(t, randomCandles(300, 42), calculate.DefaultParams())

	first, _, err := Train(ds, DefaultOptions())
	require.NoError(t, err)
	second, _, err := Train(ds, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first.Accuracy, second.Accuracy)
	assert.GreaterOrEqual(t, first.Accuracy, 0.0)
	assert.LessOrEqual(t, first.Accuracy, 1.0)

	p1, err := Predict(first, ds)
	require.NoError(t, err)
	p2, err := Predict(second, ds)
	require.NoError(t, err)
	assert.Equal(t, p1.Probability, p2.Probability)
	assert.Equal(t, p1.Direction, p2.Direction)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestTrainDoesNotModifyDataset(t *testing.T) {
	ds := dataset(t, randomCandles(200, 8), calculate.DefaultParams())
	before := make([][]float64, len(ds.X))
	for i, row := range ds.X {
		before[i] = append([]float64(nil), row...)
	}

	_, _, err := Train(ds, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, before, ds.X)
}

func TestTrainSingleClass(t *testing.T) {
	tests := []struct {
		name    string
		closeAt func(int) float64
	}{
		{"steady climb", func(i int) float64 { return 100 + float64(i) }},
		{"flat", func(int) float64 { return 100 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := dataset(t, generateTestCandles(150, tt.closeAt), calculate.DefaultParams())
			_, _, err := Train(ds, DefaultOptions())
			assert.ErrorIs(t, err, ErrSingleClass)
		})
	}
}

func TestTrainInsufficientData(t *testing.T) {
	_, _, err := Train(nil, DefaultOptions())
	assert.ErrorIs(t, err, features.ErrInsufficientData)

	ds := dataset(t, randomCandles(200, 1), calculate.DefaultParams())
	ds.X, ds.Y = ds.X[:20], ds.Y[:20]
	_, _, err = Train(ds, DefaultOptions())
	assert.ErrorIs(t, err, features.ErrInsufficientData)
}

func TestTrainFailure(t *testing.T) {
	ds := dataset(t, randomCandles(200, 2), calculate.DefaultParams())
	opts := DefaultOptions()
	opts.Boosting.Estimators = 0

	_, _, err := Train(ds, opts)
	assert.ErrorIs(t, err, ErrTrainingFailed)
}

func TestPredictErrors(t *testing.T) {
	ds := dataset(t, randomCandles(200, 3), calculate.DefaultParams())
	model, _, err := Train(ds, DefaultOptions())
	require.NoError(t, err)

	_, err = Predict(nil, ds)
	assert.ErrorIs(t, err, ErrNoModel)

	noLatest := *ds
	noLatest.Latest = nil
	_, err = Predict(model, &noLatest)
	assert.ErrorIs(t, err, ErrNoPrediction)

	params := calculate.DefaultParams()
	params.RSIPeriod = 21
	other := dataset(t, randomCandles(200, 3), params)
	_, err = Predict(model, other)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestConfidenceBand(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0.95, models.ConfidenceHigh},
		{0.2, models.ConfidenceHigh},
		{0.7, models.ConfidenceMedium},
		{0.65, models.ConfidenceMedium},
		{0.35, models.ConfidenceMedium},
		{0.6, models.ConfidenceLow},
		{0.5, models.ConfidenceLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConfidenceBand(tt.p), "p=%v", tt.p)
	}
}

func TestExplain(t *testing.T) {
	schema := features.NewSchema(calculate.DefaultParams())
	row := make([]float64, schema.Len())
	set := func(name string, v float64) {
		for i, f := range schema.Fields {
			if f == name {
				row[i] = v
			}
		}
	}
	set("rsi", 75)
	set("macd", 1)
	set("macd_signal", 0.5)
	set("bb_position", 0.5)
	set("stoch_k", 10)

	assert.Equal(t, []string{
		"RSI overbought at 75.0",
		"MACD above signal line",
		"Stochastic oversold at 10.0",
	}, explain(schema, row))
}
