package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/CandlePredictor/models"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if s.err != nil {
		return tgbotapi.Message{}, s.err
	}
	s.sent = append(s.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(s.sent)}, nil
}

func testResult() *models.PredictionResult {
	return &models.PredictionResult{
		ID:          "p1",
		ModelID:     "m1",
		Direction:   models.DirectionUp,
		Probability: 0.734,
		Confidence:  models.ConfidenceHigh,
		BarTime:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Factors:     []string{"RSI neutral (51.2)", "MACD above signal"},
	}
}

func TestNotifyPrediction(t *testing.T) {
	sender := &fakeSender{}
	n, err := NewWithSender(sender, 42)
	require.NoError(t, err)

	require.NoError(t, n.NotifyPrediction(context.Background(), "BTCUSDT", "1h", testResult()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	assert.Contains(t, msg.Text, "*Prediction for BTCUSDT (1h)*")
	assert.Contains(t, msg.Text, "🔼 UP")
	assert.Contains(t, msg.Text, "*Confidence:* HIGH")
	assert.Contains(t, msg.Text, "73.4%")
	assert.Contains(t, msg.Text, "2024-03-01 12:00")
	assert.Contains(t, msg.Text, "2. MACD above signal")
}

func TestNotifyPredictionNil(t *testing.T) {
	sender := &fakeSender{}
	n, err := NewWithSender(sender, 42)
	require.NoError(t, err)

	require.NoError(t, n.NotifyPrediction(context.Background(), "BTCUSDT", "1h", nil))
	assert.Empty(t, sender.sent)
}

func TestNotifyPredictionErrors(t *testing.T) {
	t.Run("send", func(t *testing.T) {
		boom := errors.New("flood control")
		n, err := NewWithSender(&fakeSender{err: boom}, 42)
		require.NoError(t, err)

		err = n.NotifyPrediction(context.Background(), "BTCUSDT", "1h", testResult())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled", func(t *testing.T) {
		sender := &fakeSender{}
		n, err := NewWithSender(sender, 42)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, n.NotifyPrediction(ctx, "BTCUSDT", "1h", testResult()), context.Canceled)
		assert.Empty(t, sender.sent)
	})

	t.Run("no chat", func(t *testing.T) {
		_, err := NewWithSender(&fakeSender{}, 0)
		assert.ErrorIs(t, err, ErrNoChat)
	})
}

func TestFormatPredictionDown(t *testing.T) {
	result := testResult()
	result.Direction = models.DirectionDown
	result.Confidence = models.ConfidenceLow
	result.Factors = nil

	text := FormatPrediction("EURUSD", "15m", result)
	assert.Contains(t, text, "🔽 DOWN")
	assert.Contains(t, text, "*Confidence:* LOW")
	assert.NotContains(t, text, "Decision Factors")
}
