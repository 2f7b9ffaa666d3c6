// Package source picks the candle source named in the configuration.
package source

import (
	"fmt"

	"github.com/Alias1177/CandlePredictor/internal/api/binance"
	"github.com/Alias1177/CandlePredictor/internal/api/mt5bridge"
	"github.com/Alias1177/CandlePredictor/internal/api/twelvedata"
	"github.com/Alias1177/CandlePredictor/internal/config"
	"github.com/Alias1177/CandlePredictor/internal/mock"
	"github.com/Alias1177/CandlePredictor/models"
)

// Source names accepted in the configuration
const (
	Demo       = "demo"
	Binance    = "binance"
	TwelveData = "twelvedata"
	MT5        = "mt5"
)

// New builds the candle source selected by cfg.Source
func New(cfg *config.Config) (models.CandleSource, error) {
	switch cfg.Source {
	case Demo, "":
		return mock.New(cfg.DemoSeed), nil
	case Binance:
		return binance.NewClient(binance.ClientOptions{
			BaseURL:        cfg.Binance.BaseURL,
			RequestTimeout: cfg.RequestTimeout,
			RequestsPerSec: cfg.RequestsPerSec,
			MaxRetries:     cfg.MaxRetries,
		}), nil
	case TwelveData:
		if cfg.TwelveData.APIKey == "" {
			return nil, fmt.Errorf("twelvedata source requires TWELVE_API_KEY")
		}
		return twelvedata.NewClient(twelvedata.ClientOptions{
			APIKey:         cfg.TwelveData.APIKey,
			BaseURL:        cfg.TwelveData.BaseURL,
			RequestTimeout: cfg.RequestTimeout,
			RequestsPerSec: cfg.RequestsPerSec,
			MaxRetries:     cfg.MaxRetries,
		}), nil
	case MT5:
		return mt5bridge.NewClient(mt5bridge.ClientOptions{
			BaseURL:        cfg.MT5.BridgeURL,
			RequestTimeout: cfg.RequestTimeout,
			RequestsPerSec: cfg.RequestsPerSec,
			MaxRetries:     cfg.MaxRetries,
		}), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}
