package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/CandlePredictor/internal/analyze"
	"github.com/Alias1177/CandlePredictor/internal/config"
	"github.com/Alias1177/CandlePredictor/internal/handler/api"
	"github.com/Alias1177/CandlePredictor/internal/metrics"
	"github.com/Alias1177/CandlePredictor/internal/notify/telegram"
	"github.com/Alias1177/CandlePredictor/internal/platform/logger"
	"github.com/Alias1177/CandlePredictor/internal/source"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	src, err := source.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create candle source")
	}

	opts := []analyze.Option{analyze.WithSourceName(cfg.Source)}
	metricsPath := ""
	if cfg.Metrics.Enabled {
		opts = append(opts, analyze.WithRecorder(metrics.New(prometheus.DefaultRegisterer)))
		metricsPath = cfg.Metrics.Path
	}
	if cfg.TelegramEnabled() {
		notifier, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Telegram notifier")
		}
		opts = append(opts, analyze.WithNotifier(notifier))
	}

	a, err := analyze.New(src, analyze.Config{
		Symbol:          cfg.Symbol,
		Interval:        cfg.Interval,
		Limit:           cfg.CandleCount,
		Params:          cfg.Indicators,
		Training:        cfg.Training.Options(),
		RetrainInterval: cfg.RetrainInterval,
	}, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create analyzer")
	}

	e := api.NewServer(api.NewHandler(a), metricsPath)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting dashboard server")
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().
		Str("symbol", cfg.Symbol).
		Str("interval", cfg.Interval).
		Dur("every", cfg.RefreshInterval).
		Msg("Starting refresh loop")
	if err := a.Run(ctx, cfg.RefreshInterval); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Refresh loop stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("Dashboard stopped")
}
