package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/CandlePredictor/models"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 34, 0, 0, time.UTC)
}

func TestGetCandles(t *testing.T) {
	src := &Source{Seed: 42, Now: fixedClock}

	candles, err := src.GetCandles(context.Background(), "BTCUSDT", "1h", 720)
	require.NoError(t, err)
	require.Len(t, candles, 720)

	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), candles[719].Time)
	for i, c := range candles {
		assert.LessOrEqual(t, c.Low, c.Open)
		assert.LessOrEqual(t, c.Low, c.Close)
		assert.GreaterOrEqual(t, c.High, c.Open)
		assert.GreaterOrEqual(t, c.High, c.Close)
		assert.GreaterOrEqual(t, c.Volume, 1000.0)
		assert.Less(t, c.Volume, 10000.0)
		if i > 0 {
			assert.Equal(t, time.Hour, c.Time.Sub(candles[i-1].Time))
			assert.Equal(t, candles[i-1].Close, c.Open)
		}
	}

	again, err := src.GetCandles(context.Background(), "BTCUSDT", "1h", 720)
	require.NoError(t, err)
	assert.Equal(t, candles, again)
}

func TestGetCandlesErrors(t *testing.T) {
	src := &Source{Seed: 1, Now: fixedClock}

	_, err := src.GetCandles(context.Background(), "BTCUSDT", "1h", 0)
	assert.ErrorIs(t, err, models.ErrNoData)

	_, err = src.GetCandles(context.Background(), "BTCUSDT", "7x", 10)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.GetCandles(ctx, "BTCUSDT", "1h", 10)
	assert.ErrorIs(t, err, context.Canceled)
}
