package analyze

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/CandlePredictor/internal/analysis/prediction"
	"github.com/Alias1177/CandlePredictor/internal/calculate"
	"github.com/Alias1177/CandlePredictor/internal/features"
	"github.com/Alias1177/CandlePredictor/models"
)

// ErrTrainingInProgress is returned by Train while another fit is running
var ErrTrainingInProgress = errors.New("training already in progress")

// Config describes which series an Analyzer follows and how
type Config struct {
	Symbol   string
	Interval string
	Limit    int
	Params   calculate.Params
	Training prediction.Options
	// RetrainInterval is the model age after which Refresh retrains, 0 keeps the first model
	RetrainInterval time.Duration
}

// Recorder receives pipeline measurements
type Recorder interface {
	ObserveRefresh(status string, took time.Duration)
	ObserveFetchError(source string)
	ObserveTraining(result *models.TrainingResult, err error, took time.Duration)
	ObservePrediction(result *models.PredictionResult)
}

// Notifier is told about every fresh prediction
type Notifier interface {
	NotifyPrediction(ctx context.Context, symbol, interval string, result *models.PredictionResult) error
}

type nopRecorder struct{}

func (nopRecorder) ObserveRefresh(string, time.Duration) {}
func (nopRecorder) ObserveFetchError(string) {}
func (nopRecorder) ObserveTraining(*models.TrainingResult, error, time.Duration) {}
func (nopRecorder) ObservePrediction(*models.PredictionResult) {}

// Option customizes an Analyzer
type Option func(*Analyzer)

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(a *Analyzer) { a.recorder = r }
}

// WithNotifier attaches a prediction notifier
func WithNotifier(n Notifier) Option {
	return func(a *Analyzer) { a.notifier = n }
}

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithSourceName labels fetch errors reported to the recorder
func WithSourceName(name string) Option {
	return func(a *Analyzer) { a.sourceName = name }
}

// Analyzer owns the model artifact for one symbol and runs the
// fetch, annotate, build, train and predict pipeline.
//
// Passes are serialized. The model is swapped atomically and only after a
// successful fit, so readers never see a half-trained artifact.
type Analyzer struct {
	cfg        Config
	source     models.CandleSource
	sourceName string
	recorder   Recorder
	notifier   Notifier
	now        func() time.Time
	logger     zerolog.Logger

	passMu  sync.Mutex
	trainMu sync.Mutex

	model    atomic.Pointer[prediction.Model]
	snapshot atomic.Pointer[Snapshot]
}

// New creates an Analyzer reading candles from source
func New(source models.CandleSource, cfg Config, opts ...Option) (*Analyzer, error) {
	if source == nil {
		return nil, errors.New("candle source is required")
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("indicator params: %w", err)
	}
	if cfg.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", cfg.Limit)
	}

	a := &Analyzer{
		cfg:        cfg,
		source:     source,
		sourceName: "candles",
		recorder:   nopRecorder{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cfg.Training.Clock == nil {
		a.cfg.Training.Clock = a.now
	}
	a.logger = log.With().
		Str("component", "analyzer").
		Str("symbol", cfg.Symbol).
		Str("interval", cfg.Interval).
		Logger()

	return a, nil
}

// Model returns the current artifact, nil before the first successful fit
func (a *Analyzer) Model() *prediction.Model { return a.model.Load() }

// Snapshot returns the result of the last finished pass, nil before the first
func (a *Analyzer) Snapshot() *Snapshot { return a.snapshot.Load() }

// Refresh runs one full pass. Data problems end up in the snapshot status;
// only transport failures and invalid configuration are returned as errors.
func (a *Analyzer) Refresh(ctx context.Context) (*Snapshot, error) {
	a.passMu.Lock()
	defer a.passMu.Unlock()

	started := a.now()
	snap, err := a.refresh(ctx)
	if err != nil {
		return nil, err
	}
	a.snapshot.Store(snap)
	a.recorder.ObserveRefresh(string(snap.Status), a.now().Sub(started))

	a.logger.Info().
		Str("status", string(snap.Status)).
		Int("bars", snap.Bars).
		Str("signal", snap.Signal).
		Msg("Refresh finished")

	return snap, nil
}

func (a *Analyzer) refresh(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Symbol:   a.cfg.Symbol,
		Interval: a.cfg.Interval,
		Updated:  a.now().UTC(),
	}

	frame, err := a.fetch(ctx)
	if errors.Is(err, models.ErrNoData) {
		snap.Status = StatusNoData
		a.unavailable(snap, err)
		return snap, nil
	}
	if err != nil {
		return nil, err
	}

	snap.Frame = frame
	snap.Bars = frame.Len()
	snap.Signal = frameSignal(frame)
	snap.Market = marketContext(frame)

	ds, err := features.Build(frame)
	if errors.Is(err, features.ErrInsufficientData) {
		snap.Status = StatusInsufficient
		a.unavailable(snap, err)
		return snap, nil
	}
	if err != nil {
		return nil, err
	}

	if a.needsTraining() {
		if _, err := a.train(ds); err != nil && !errors.Is(err, ErrTrainingInProgress) {
			snap.TrainingError = err.Error()
		}
	}
	a.keepTraining(snap)

	result, err := prediction.Predict(a.model.Load(), ds)
	if err != nil {
		snap.Status = StatusNoPrediction
		snap.PredictError = err.Error()
		return snap, nil
	}

	snap.Status = StatusOK
	snap.Prediction = result
	a.recorder.ObservePrediction(result)
	a.notify(ctx, result)

	return snap, nil
}

// Train fetches the series and fits a new model right away. It refuses to
// start while another fit is running.
func (a *Analyzer) Train(ctx context.Context) (*models.TrainingResult, error) {
	if !a.trainMu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer a.trainMu.Unlock()

	frame, err := a.fetch(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := features.Build(frame)
	if err != nil {
		return nil, err
	}
	return a.fitLocked(ds)
}

func (a *Analyzer) fetch(ctx context.Context) (*calculate.Frame, error) {
	candles, err := a.source.GetCandles(ctx, a.cfg.Symbol, a.cfg.Interval, a.cfg.Limit)
	if err != nil {
		if !errors.Is(err, models.ErrNoData) {
			a.recorder.ObserveFetchError(a.sourceName)
			a.logger.Error().Err(err).Msg("Failed to fetch candles")
		}
		return nil, fmt.Errorf("fetch %s %s: %w", a.cfg.Symbol, a.cfg.Interval, err)
	}
	if len(candles) == 0 {
		return nil, models.ErrNoData
	}
	return calculate.Annotate(candles, a.cfg.Params)
}

func (a *Analyzer) needsTraining() bool {
	m := a.model.Load()
	if m == nil {
		return true
	}
	if !m.Schema.Equal(features.NewSchema(a.cfg.Params)) {
		return true
	}
	return a.cfg.RetrainInterval > 0 && a.now().Sub(m.TrainedAt) >= a.cfg.RetrainInterval
}

func (a *Analyzer) train(ds *features.Dataset) (*models.TrainingResult, error) {
	if !a.trainMu.TryLock() {
		a.logger.Warn().Msg("Training already running, keeping current model")
		return nil, ErrTrainingInProgress
	}
	defer a.trainMu.Unlock()
	return a.fitLocked(ds)
}

// fitLocked must be called with trainMu held. A failed fit leaves the
// previous model in place.
func (a *Analyzer) fitLocked(ds *features.Dataset) (*models.TrainingResult, error) {
	started := a.now()
	model, result, err := prediction.Train(ds, a.cfg.Training)
	a.recorder.ObserveTraining(result, err, a.now().Sub(started))
	if err != nil {
		a.logger.Warn().Err(err).Msg("Training produced no model")
		return nil, err
	}
	a.model.Store(model)
	return result, nil
}

// keepTraining reports the current model's result on the snapshot
func (a *Analyzer) keepTraining(snap *Snapshot) {
	if m := a.model.Load(); m != nil {
		snap.Training = m.Result
	}
}

// unavailable marks the prediction as unavailable because of err. The last
// model's training result stays visible.
func (a *Analyzer) unavailable(snap *Snapshot, err error) {
	snap.PredictError = err.Error()
	a.keepTraining(snap)
	if snap.Training == nil {
		snap.TrainingError = err.Error()
	}
}

func (a *Analyzer) notify(ctx context.Context, result *models.PredictionResult) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.NotifyPrediction(ctx, a.cfg.Symbol, a.cfg.Interval, result); err != nil {
		a.logger.Error().Err(err).Msg("Failed to send prediction notification")
	}
}

// Run refreshes every interval until ctx is done
func (a *Analyzer) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if _, err := a.Refresh(ctx); err != nil {
			a.logger.Error().Err(err).Msg("Refresh failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
