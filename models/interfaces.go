package models

import "context"

// CandleSource is implemented by every market data client.
// Candles are returned oldest first; an empty result is ErrNoData.
type CandleSource interface {
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
}
