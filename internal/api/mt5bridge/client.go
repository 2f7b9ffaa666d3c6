// Package mt5bridge reads rates from a MetaTrader 5 terminal through the
// HTTP bridge that runs next to it.
package mt5bridge

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	httpClient "github.com/Alias1177/CandlePredictor/internal/platform/http"
	"github.com/Alias1177/CandlePredictor/models"
)

// MaxCount is the largest number of bars the bridge returns per call
const MaxCount = 10000

var timeframes = map[string]string{
	"1m": "M1", "1min": "M1", "M1": "M1",
	"5m": "M5", "5min": "M5", "M5": "M5",
	"15m": "M15", "15min": "M15", "M15": "M15",
	"30m": "M30", "30min": "M30", "M30": "M30",
	"1h": "H1", "H1": "H1",
	"4h": "H4", "H4": "H4",
	"1d": "D1", "1day": "D1", "D1": "D1",
	"1w": "W1", "1week": "W1", "W1": "W1",
	"1M": "MN1", "1month": "MN1", "MN1": "MN1",
}

// Timeframe maps an interval token to the terminal's timeframe name
func Timeframe(interval string) (string, bool) {
	tf, ok := timeframes[interval]
	return tf, ok
}

// Client talks to the bridge's JSON endpoints
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new bridge client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	RetryInterval   time.Duration
}

// NewClient creates a new bridge client
func NewClient(options ClientOptions) *Client {
	return &Client{
		baseURL: strings.TrimRight(options.BaseURL, "/"),
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
			RetryInterval:   options.RetryInterval,
		}),
		logger: log.With().Str("component", "mt5_bridge_client").Logger(),
	}
}

type ratesRequest struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Count     int    `json:"count"`
}

// GetCandles asks the terminal for the latest count bars. Tick volume is
// used as volume.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, count int) ([]models.Candle, error) {
	tf, ok := Timeframe(interval)
	if !ok {
		return nil, fmt.Errorf("mt5 bridge: unsupported interval %q", interval)
	}
	if count > MaxCount {
		count = MaxCount
	}

	c.logger.Debug().Str("symbol", symbol).Str("timeframe", tf).Int("count", count).Msg("Fetching rates")

	body, err := c.httpClient.PostJSON(ctx, c.baseURL+"/get_rates", ratesRequest{Symbol: symbol, Timeframe: tf, Count: count})
	if err != nil {
		return nil, fmt.Errorf("mt5 bridge rates: %w", err)
	}

	candles, err := parseRates(body)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error parsing rates")
		return nil, err
	}
	if len(candles) == 0 {
		return nil, models.ErrNoData
	}

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched rates")
	return candles, nil
}

// Healthy reports whether the bridge is up and connected to the terminal
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	body, err := c.httpClient.Get(ctx, c.baseURL+"/health")
	if err != nil {
		return false, err
	}
	return gjson.GetBytes(body, "mt5_connected").Bool(), nil
}

func parseRates(body []byte) ([]models.Candle, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("mt5 bridge: invalid JSON")
	}
	root := gjson.ParseBytes(body)
	if msg := root.Get("error"); msg.Exists() {
		return nil, fmt.Errorf("mt5 bridge error: %s", msg.String())
	}

	rows := root.Get("data").Array()
	candles := make([]models.Candle, 0, len(rows))
	for i, r := range rows {
		ts, err := parseTime(r.Get("time"))
		if err != nil {
			return nil, fmt.Errorf("mt5 bridge: row %d: %w", i, err)
		}
		candles = append(candles, models.Candle{
			Time:   ts,
			Open:   r.Get("open").Float(),
			High:   r.Get("high").Float(),
			Low:    r.Get("low").Float(),
			Close:  r.Get("close").Float(),
			Volume: r.Get("tick_volume").Float(),
		})
	}
	return candles, nil
}

// parseTime accepts HTTP dates, RFC 3339 strings and unix seconds
func parseTime(v gjson.Result) (time.Time, error) {
	switch v.Type {
	case gjson.Number:
		return time.Unix(v.Int(), 0).UTC(), nil
	case gjson.String:
		if t, err := http.ParseTime(v.String()); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.Parse(time.RFC3339, v.String()); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", v.String(), time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unexpected time %s", v.Raw)
}
