// Package telegram pushes predictions to a Telegram chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/CandlePredictor/models"
)

// ErrNoChat is returned when the notifier has no chat to write to
var ErrNoChat = errors.New("telegram chat id is not set")

// Sender is the part of the bot API used for delivery
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends every new prediction to one chat
type Notifier struct {
	bot    Sender
	chatID int64
	logger zerolog.Logger
}

// New connects to the bot API with token
func New(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info().Str("account", bot.Self.UserName).Msg("Authorized on Telegram account")
	return NewWithSender(bot, chatID)
}

// NewWithSender builds a Notifier over an existing sender
func NewWithSender(bot Sender, chatID int64) (*Notifier, error) {
	if chatID == 0 {
		return nil, ErrNoChat
	}
	return &Notifier{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram").Logger(),
	}, nil
}

// NotifyPrediction formats result and sends it
func (n *Notifier) NotifyPrediction(ctx context.Context, symbol, interval string, result *models.PredictionResult) error {
	if result == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatPrediction(symbol, interval, result))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", n.chatID).Msg("Failed to send prediction")
		return fmt.Errorf("send prediction: %w", err)
	}

	n.logger.Debug().Str("prediction_id", result.ID).Msg("Prediction sent")
	return nil
}

// FormatPrediction renders result as a Markdown message
func FormatPrediction(symbol, interval string, result *models.PredictionResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("*Prediction for %s (%s)*\n\n", symbol, interval))

	directionEmoji := "⚖️"
	switch result.Direction {
	case models.DirectionUp:
		directionEmoji = "🔼"
	case models.DirectionDown:
		directionEmoji = "🔽"
	}

	b.WriteString(fmt.Sprintf("*Direction:* %s %s\n", directionEmoji, strings.ToUpper(string(result.Direction))))
	b.WriteString(fmt.Sprintf("*Confidence:* %s\n", result.Confidence))
	b.WriteString(fmt.Sprintf("*Probability up:* %.1f%%\n", result.Probability*100))
	b.WriteString(fmt.Sprintf("*Bar:* %s\n", result.BarTime.UTC().Format("2006-01-02 15:04")))

	if len(result.Factors) > 0 {
		b.WriteString("\n*Decision Factors:*\n")
		for i, factor := range result.Factors {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, factor))
		}
	}

	b.WriteString("\n_Not financial advice._")
	return b.String()
}
