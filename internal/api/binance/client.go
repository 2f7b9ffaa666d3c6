// Package binance reads spot klines from the public Binance REST API.
package binance

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	httpClient "github.com/Alias1177/CandlePredictor/internal/platform/http"
	"github.com/Alias1177/CandlePredictor/models"
)

// DefaultBaseURL is the public spot endpoint
const DefaultBaseURL = "https://api.binance.com"

// MaxLimit is the largest page the klines endpoint serves
const MaxLimit = 1000

// Client is the Binance klines client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Binance client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	RetryInterval   time.Duration
}

// NewClient creates a new Binance client
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
			RetryInterval:   options.RetryInterval,
		}),
		logger: log.With().Str("component", "binance_client").Logger(),
	}
}

// GetCandles fetches the latest limit klines, oldest first.
// limit is capped at MaxLimit.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/api/v3/klines?" + q.Encode()

	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("limit", limit).Msg("Fetching klines")

	body, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("binance klines: %w", err)
	}

	candles, err := parseKlines(body)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error parsing klines")
		return nil, err
	}
	if len(candles) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No klines in response")
		return nil, models.ErrNoData
	}

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched klines")
	return candles, nil
}

// parseKlines decodes the array-of-arrays kline payload:
// [openTime, open, high, low, close, volume, closeTime, ...]
func parseKlines(body []byte) ([]models.Candle, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("binance klines: invalid JSON")
	}
	root := gjson.ParseBytes(body)
	if msg := root.Get("msg"); msg.Exists() {
		return nil, fmt.Errorf("binance error %d: %s", root.Get("code").Int(), msg.String())
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("binance klines: unexpected payload")
	}

	rows := root.Array()
	candles := make([]models.Candle, 0, len(rows))
	for i, k := range rows {
		fields := k.Array()
		if len(fields) < 6 {
			return nil, fmt.Errorf("binance klines: row %d has %d fields", i, len(fields))
		}
		candles = append(candles, models.Candle{
			Time:   time.UnixMilli(fields[0].Int()).UTC(),
			Open:   fields[1].Float(),
			High:   fields[2].Float(),
			Low:    fields[3].Float(),
			Close:  fields[4].Float(),
			Volume: fields[5].Float(),
		})
	}
	return candles, nil
}
