package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/CandlePredictor/internal/analyze"
	"github.com/Alias1177/CandlePredictor/internal/config"
	"github.com/Alias1177/CandlePredictor/internal/platform/logger"
	"github.com/Alias1177/CandlePredictor/internal/source"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// Setup context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	logger.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("source", cfg.Source).Msg("Starting candle analyzer")

	printConfig(cfg)

	// 3. Setup the candle source
	src, err := source.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create candle source")
	}

	a, err := analyze.New(src, analyze.Config{
		Symbol:          cfg.Symbol,
		Interval:        cfg.Interval,
		Limit:           cfg.CandleCount,
		Params:          cfg.Indicators,
		Training:        cfg.Training.Options(),
		RetrainInterval: cfg.RetrainInterval,
	}, analyze.WithSourceName(cfg.Source))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create analyzer")
	}

	// 4. Run one pass
	snap, err := a.Refresh(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	printSnapshot(snap)
}

func printConfig(cfg *config.Config) {
	p := cfg.Indicators
	fmt.Printf("Configuration:\n")
	fmt.Printf("Source: %s\n", cfg.Source)
	fmt.Printf("Symbol: %s\n", cfg.Symbol)
	fmt.Printf("Interval: %s\n", cfg.Interval)
	fmt.Printf("CandleCount: %d\n", cfg.CandleCount)
	fmt.Printf("SMA: %d/%d, EMA: %d/%d\n", p.SMAShort, p.SMALong, p.EMAFast, p.EMASlow)
	fmt.Printf("MACD Fast: %d, Slow: %d, Signal: %d\n", p.MACDFastPeriod, p.MACDSlowPeriod, p.MACDSignalPeriod)
	fmt.Printf("RSI Period: %d\n", p.RSIPeriod)
	fmt.Printf("BB Period: %d, StdDev: %.2f\n", p.BBPeriod, p.BBStdDev)
	fmt.Printf("Test size: %.2f, Seed: %d\n", cfg.Training.TestSize, cfg.Training.Seed)
}

func printSnapshot(snap *analyze.Snapshot) {
	fmt.Printf("\n===== %s %s =====\n", snap.Symbol, snap.Interval)
	fmt.Printf("Status: %s\n", snap.Status)
	fmt.Printf("Bars: %d\n", snap.Bars)

	if snap.Training != nil {
		t := snap.Training
		fmt.Printf("\nModel: %s\n", t.ModelID)
		fmt.Printf("Accuracy: %.2f%%\n", t.Accuracy*100)
		fmt.Printf("Train/Test rows: %d/%d, Features: %d\n", t.TrainRows, t.TestRows, t.Features)
	} else if snap.TrainingError != "" {
		fmt.Printf("\nTraining unavailable: %s\n", snap.TrainingError)
	}

	if snap.Prediction == nil {
		fmt.Printf("\nPrediction unavailable: %s\n", snap.PredictError)
		return
	}

	p := snap.Prediction
	fmt.Printf("\nDirection: %s\n", p.Direction)
	fmt.Printf("Probability up: %.2f%%\n", p.Probability*100)
	fmt.Printf("Confidence: %s\n", p.Confidence)
	fmt.Printf("Bar time: %s\n", p.BarTime.Format("2006-01-02 15:04"))
	if snap.Signal != "" {
		fmt.Printf("Indicator signal: %s\n", snap.Signal)
	}
	if m := snap.Market; m != nil {
		fmt.Printf("Order flow: %s, Volatility: %s, VWAP: %.5f\n", m.OrderFlow, m.VolatilityRegime, m.VWAP)
	}
	for i, factor := range p.Factors {
		fmt.Printf("%d. %s\n", i+1, factor)
	}
}
