package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/CandlePredictor/internal/analysis/prediction"
	"github.com/Alias1177/CandlePredictor/internal/calculate"
	"github.com/Alias1177/CandlePredictor/internal/ml"
)

// Config holds all application configuration
type Config struct {
	Source      string `yaml:"source" default:"demo" validate:"oneof=demo binance twelvedata mt5"`
	Symbol      string `yaml:"symbol" default:"BTCUSDT" validate:"required"`
	Interval    string `yaml:"interval" default:"1h" validate:"required"`
	CandleCount int    `yaml:"candle_count" default:"720" validate:"min=1"`
	DemoSeed    int64  `yaml:"demo_seed" default:"42"`

	LogLevel  string `yaml:"log_level" default:"info" validate:"oneof=trace debug info warn error"`
	LogFormat string `yaml:"log_format" default:"console" validate:"oneof=console json"`

	RequestTimeout  time.Duration `yaml:"request_timeout" default:"30s" validate:"gt=0"`
	RequestsPerSec  int           `yaml:"requests_per_sec" default:"5" validate:"min=1"`
	MaxRetries      int           `yaml:"max_retries" default:"3" validate:"min=0"`
	RefreshInterval time.Duration `yaml:"refresh_interval" default:"5m" validate:"gt=0"`
	RetrainInterval time.Duration `yaml:"retrain_interval" default:"1h" validate:"min=0"`

	Indicators calculate.Params `yaml:"indicators"`
	Training   Training         `yaml:"training"`

	Server struct {
		Addr            string        `yaml:"addr" default:":8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	Binance struct {
		BaseURL string `yaml:"base_url" default:"https://api.binance.com" validate:"url"`
	} `yaml:"binance"`

	TwelveData struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url" default:"https://api.twelvedata.com" validate:"url"`
	} `yaml:"twelvedata"`

	MT5 struct {
		BridgeURL string `yaml:"bridge_url" default:"http://localhost:5000" validate:"url"`
	} `yaml:"mt5"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
}

// Training mirrors prediction.Options in a file-friendly form
type Training struct {
	TestSize         float64 `yaml:"test_size" default:"0.2" validate:"gt=0,lt=1"`
	Seed             int64   `yaml:"seed" default:"42"`
	Estimators       int     `yaml:"estimators" default:"100" validate:"min=1"`
	LearningRate     float64 `yaml:"learning_rate" default:"0.1" validate:"gt=0"`
	MaxDepth         int     `yaml:"max_depth" default:"3" validate:"min=1"`
	ForestEstimators int     `yaml:"forest_estimators" default:"100" validate:"min=1"`
}

// Options converts the training section for the trainer
func (t Training) Options() prediction.Options {
	return prediction.Options{
		TestSize: t.TestSize,
		Seed:     t.Seed,
		Boosting: ml.BoostingConfig{
			Estimators:   t.Estimators,
			LearningRate: t.LearningRate,
			MaxDepth:     t.MaxDepth,
		},
		Forest: ml.ForestConfig{
			Estimators: t.ForestEstimators,
			Seed:       t.Seed,
		},
	}
}

// TelegramEnabled reports whether predictions should be pushed to a chat
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}

var validate = validator.New()

// Load builds the configuration: struct defaults, then the optional YAML
// file at path, then environment variables (a .env file is read if present).
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Source = getEnvWithDefault("SOURCE", cfg.Source)
	cfg.Symbol = getEnvWithDefault("SYMBOL", cfg.Symbol)
	cfg.Interval = getEnvWithDefault("INTERVAL", cfg.Interval)
	cfg.CandleCount = getEnvIntWithDefault("CANDLE_COUNT", cfg.CandleCount)
	cfg.DemoSeed = getEnvInt64WithDefault("DEMO_SEED", cfg.DemoSeed)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvWithDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.RequestTimeout = getEnvDurationWithDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RefreshInterval = getEnvDurationWithDefault("REFRESH_INTERVAL", cfg.RefreshInterval)
	cfg.RetrainInterval = getEnvDurationWithDefault("RETRAIN_INTERVAL", cfg.RetrainInterval)

	cfg.Indicators.RSIPeriod = getEnvIntWithDefault("RSI_PERIOD", cfg.Indicators.RSIPeriod)
	cfg.Indicators.MACDFastPeriod = getEnvIntWithDefault("MACD_FAST_PERIOD", cfg.Indicators.MACDFastPeriod)
	cfg.Indicators.MACDSlowPeriod = getEnvIntWithDefault("MACD_SLOW_PERIOD", cfg.Indicators.MACDSlowPeriod)
	cfg.Indicators.MACDSignalPeriod = getEnvIntWithDefault("MACD_SIGNAL_PERIOD", cfg.Indicators.MACDSignalPeriod)
	cfg.Indicators.BBPeriod = getEnvIntWithDefault("BB_PERIOD", cfg.Indicators.BBPeriod)
	cfg.Indicators.BBStdDev = getEnvFloatWithDefault("BB_STD_DEV", cfg.Indicators.BBStdDev)
	cfg.Indicators.ATRPeriod = getEnvIntWithDefault("ATR_PERIOD", cfg.Indicators.ATRPeriod)

	cfg.Training.Seed = getEnvInt64WithDefault("TRAINING_SEED", cfg.Training.Seed)

	cfg.Server.Addr = getEnvWithDefault("HTTP_ADDR", cfg.Server.Addr)
	cfg.Metrics.Enabled = getEnvBoolWithDefault("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Binance.BaseURL = getEnvWithDefault("BINANCE_BASE_URL", cfg.Binance.BaseURL)
	cfg.TwelveData.APIKey = getEnvWithDefault("TWELVE_API_KEY", cfg.TwelveData.APIKey)
	cfg.MT5.BridgeURL = getEnvWithDefault("MT5_BRIDGE_URL", cfg.MT5.BridgeURL)
	cfg.Telegram.Token = getEnvWithDefault("TELEGRAM_BOT_TOKEN", cfg.Telegram.Token)
	cfg.Telegram.ChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", cfg.Telegram.ChatID)
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
