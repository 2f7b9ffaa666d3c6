package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/CandlePredictor/internal/calculate"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Source)
	assert.Equal(t, "BTCUSDT", cfg.Symbol)
	assert.Equal(t, "1h", cfg.Interval)
	assert.Equal(t, 720, cfg.CandleCount)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Hour, cfg.RetrainInterval)
	assert.Equal(t, calculate.DefaultParams(), cfg.Indicators)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.TelegramEnabled())

	opts := cfg.Training.Options()
	assert.Equal(t, 0.2, opts.TestSize)
	assert.Equal(t, int64(42), opts.Seed)
	assert.Equal(t, 100, opts.Boosting.Estimators)
	assert.Equal(t, 0.1, opts.Boosting.LearningRate)
	assert.Equal(t, 3, opts.Boosting.MaxDepth)
	assert.Equal(t, 100, opts.Forest.Estimators)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source: binance
symbol: ETHUSDT
interval: 15m
candle_count: 1000
indicators:
  rsi_period: 21
metrics:
  enabled: false
training:
  seed: 7
`), 0o600))

	t.Setenv("INTERVAL", "4h")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "binance", cfg.Source)
	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, "4h", cfg.Interval)
	assert.Equal(t, 1000, cfg.CandleCount)
	assert.Equal(t, 21, cfg.Indicators.RSIPeriod)
	assert.Equal(t, 50, cfg.Indicators.SMALong)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, int64(7), cfg.Training.Options().Seed)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown source", "source: ftp\n"},
		{"bad test size", "training:\n  test_size: 1.5\n"},
		{"short sma above long", "indicators:\n  sma_short: 60\n"},
		{"broken yaml", "symbol: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "nope")
	t.Setenv("X_DURATION", "90s")
	t.Setenv("X_BOOL", "yes")

	assert.Equal(t, 5, getEnvIntWithDefault("X_INT", 5))
	assert.Equal(t, 90*time.Second, getEnvDurationWithDefault("X_DURATION", time.Minute))
	assert.True(t, getEnvBoolWithDefault("X_BOOL", false))
	assert.Equal(t, "fallback", getEnvWithDefault("X_MISSING", "fallback"))
}
