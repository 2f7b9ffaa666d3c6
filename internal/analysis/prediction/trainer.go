package prediction

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/CandlePredictor/internal/features"
	"github.com/Alias1177/CandlePredictor/internal/ml"
	"github.com/Alias1177/CandlePredictor/models"
)

var (
	// ErrSingleClass means every labelled row has the same target
	ErrSingleClass = errors.New("target has a single class")
	// ErrTrainingFailed wraps any failure inside the classifiers
	ErrTrainingFailed = errors.New("training failed")
	// ErrNoModel is returned when predicting without a trained model
	ErrNoModel = errors.New("no trained model")
	// ErrNoPrediction means the latest bar has no complete feature row
	ErrNoPrediction = errors.New("latest bar has incomplete features")
	// ErrSchemaMismatch is returned when the dataset layout differs from the model's
	ErrSchemaMismatch = features.ErrSchemaMismatch
)

// Options controls a training run
type Options struct {
	TestSize float64
	Seed     int64
	Boosting ml.BoostingConfig
	Forest   ml.ForestConfig
	// Clock stamps the model, nil means time.Now
	Clock    func() time.Time
}

// DefaultOptions holds out 20% with seed 42 and the stock classifier settings
func DefaultOptions() Options {
	return Options{
		TestSize: 0.2,
		Seed:     42,
		Boosting: ml.DefaultBoosting(),
		Forest:   ml.DefaultForest(),
	}
}

func (o Options) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

// Model is an immutable fitted ensemble together with everything needed to
// score a new row: the feature layout and the scaler fitted on training rows.
type Model struct {
	ID        string                 `json:"id"`
	Schema    features.Schema        `json:"schema"`
	Scaler    *ml.StandardScaler     `json:"scaler"`
	Boosted   *ml.GradientBoosting   `json:"boosted"`
	Forest    *ml.RandomForest       `json:"forest"`
	Accuracy  float64                `json:"accuracy"`
	TrainedAt time.Time              `json:"trained_at"`
	Result    *models.TrainingResult `json:"result"`
}

// Probability is the mean of both classifiers' class-up probability for an
// already scaled row
func (m *Model) Probability(scaled []float64) float64 {
	return (m.Boosted.Probability(scaled) + m.Forest.Probability(scaled)) / 2
}

func (m *Model) classify(scaled [][]float64) []int {
	out := make([]int, len(scaled))
	for i, row := range scaled {
		if m.Probability(row) > 0.5 {
			out[i] = 1
		}
	}
	return out
}

// Train fits the ensemble on a stratified split of ds and scores it on the
// held-out rows. The dataset is not modified.
func Train(ds *features.Dataset, opts Options) (model *Model, result *models.TrainingResult, err error) {
	logger := log.With().Str("component", "trainer").Logger()

	if ds == nil || ds.Rows() < features.MinRows {
		rows := 0
		if ds != nil {
			rows = ds.Rows()
		}
		return nil, nil, fmt.Errorf("%w: %d rows, need %d", features.ErrInsufficientData, rows, features.MinRows)
	}

	positives := 0
	for _, y := range ds.Y {
		positives += y
	}
	if positives == 0 || positives == len(ds.Y) {
		return nil, nil, fmt.Errorf("%w: %d of %d rows are up", ErrSingleClass, positives, len(ds.Y))
	}

	defer func() {
		if r := recover(); r != nil {
			model, result = nil, nil
			err = fmt.Errorf("%w: %v", ErrTrainingFailed, r)
		}
	}()

	trainIdx, testIdx, err := ml.StratifiedSplit(ds.Y, opts.TestSize, opts.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: split: %v", ErrTrainingFailed, err)
	}
	trainX, trainY := ml.Take(ds.X, ds.Y, trainIdx)
	testX, testY := ml.Take(ds.X, ds.Y, testIdx)

	scaler, err := ml.FitScaler(trainX)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: scaler: %v", ErrTrainingFailed, err)
	}
	scaledTrain, err := scaler.Transform(trainX)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: scaler: %v", ErrTrainingFailed, err)
	}
	scaledTest, err := scaler.Transform(testX)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: scaler: %v", ErrTrainingFailed, err)
	}

	forestCfg := opts.Forest
	forestCfg.Seed = opts.Seed

	var (
		wg                      sync.WaitGroup
		boosted                 *ml.GradientBoosting
		forest                  *ml.RandomForest
		boostErr, forestErr     error
		boostPanic, forestPanic interface{}
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer func() { boostPanic = recover() }()
		boosted, boostErr = ml.FitGradientBoosting(scaledTrain, trainY, opts.Boosting)
	}()
	go func() {
		defer wg.Done()
		defer func() { forestPanic = recover() }()
		forest, forestErr = ml.FitRandomForest(scaledTrain, trainY, forestCfg)
	}()
	wg.Wait()

	switch {
	case boostPanic != nil:
		return nil, nil, fmt.Errorf("%w: gradient boosting: %v", ErrTrainingFailed, boostPanic)
	case forestPanic != nil:
		return nil, nil, fmt.Errorf("%w: random forest: %v", ErrTrainingFailed, forestPanic)
	case boostErr != nil:
		return nil, nil, fmt.Errorf("%w: gradient boosting: %v", ErrTrainingFailed, boostErr)
	case forestErr != nil:
		return nil, nil, fmt.Errorf("%w: random forest: %v", ErrTrainingFailed, forestErr)
	}

	model = &Model{
		ID:        uuid.NewString(),
		Schema:    ds.Schema,
		Scaler:    scaler,
		Boosted:   boosted,
		Forest:    forest,
		TrainedAt: opts.now().UTC(),
	}
	model.Accuracy = ml.Accuracy(testY, model.classify(scaledTest))

	result = &models.TrainingResult{
		ModelID:   model.ID,
		Accuracy:  model.Accuracy,
		TrainRows: len(trainIdx),
		TestRows:  len(testIdx),
		Features:  ds.Schema.Len(),
		TrainedAt: model.TrainedAt,
	}
	model.Result = result

	logger.Info().
		Str("model_id", model.ID).
		Float64("accuracy", model.Accuracy).
		Int("train_rows", result.TrainRows).
		Int("test_rows", result.TestRows).
		Msg("Model trained")

	return model, result, nil
}
