// Package mock generates a reproducible demo series for offline runs.
package mock

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/Alias1177/CandlePredictor/models"
)

const (
	startPrice    = 45000.0
	drift         = 0.0001
	barVolatility = 0.02
	intrabarRange = 0.005
)

// Source is a seeded random walk with a slight upward drift
type Source struct {
	Seed int64
	Now  func() time.Time
}

// New returns a demo source seeded with seed
func New(seed int64) *Source {
	return &Source{Seed: seed, Now: time.Now}
}

// GetCandles returns limit bars ending at the current interval boundary.
// The same seed and limit always give the same prices.
func (s *Source) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, models.ErrNoData
	}
	step, ok := models.IntervalDuration(interval)
	if !ok {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	end := now().UTC().Truncate(step)
	start := end.Add(-time.Duration(limit-1) * step)

	rng := rand.New(rand.NewSource(s.Seed))
	prices := make([]float64, limit)
	price := startPrice
	for i := range prices {
		price *= 1 + drift + rng.NormFloat64()*barVolatility
		prices[i] = price
	}

	candles := make([]models.Candle, limit)
	for i, price := range prices {
		spread := price * intrabarRange
		high := price + rng.Float64()*spread
		low := price - rng.Float64()*spread
		open := price
		if i > 0 {
			open = prices[i-1]
		}
		candles[i] = models.Candle{
			Time:   start.Add(time.Duration(i) * step),
			Open:   open,
			High:   math.Max(open, math.Max(high, price)),
			Low:    math.Min(open, math.Min(low, price)),
			Close:  price,
			Volume: float64(1000 + rng.Intn(9000)),
		}
	}

	return candles, nil
}
