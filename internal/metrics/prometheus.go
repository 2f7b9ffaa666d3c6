// Package metrics exports pipeline measurements to Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Alias1177/CandlePredictor/internal/analysis/prediction"
	"github.com/Alias1177/CandlePredictor/internal/features"
	"github.com/Alias1177/CandlePredictor/models"
)

// Recorder implements analyze.Recorder using Prometheus
type Recorder struct {
	refreshes   *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec
	trainings   *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	accuracy    prometheus.Gauge
	probability prometheus.Gauge
	predictions *prometheus.CounterVec
}

// New registers the collectors on reg, the default registry when nil
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		refreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candle_predictor_refreshes_total",
				Help: "Refresh passes by resulting status",
			},
			[]string{"status"},
		),
		fetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candle_predictor_fetch_errors_total",
				Help: "Failed candle fetches by source",
			},
			[]string{"source"},
		),
		trainings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candle_predictor_trainings_total",
				Help: "Training runs by outcome",
			},
			[]string{"outcome"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "candle_predictor_operation_duration_seconds",
				Help:    "Duration of pipeline operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		accuracy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "candle_predictor_model_accuracy",
			Help: "Held-out accuracy of the current model",
		}),
		probability: factory.NewGauge(prometheus.GaugeOpts{
			Name: "candle_predictor_last_probability",
			Help: "Up probability of the latest prediction",
		}),
		predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candle_predictor_predictions_total",
				Help: "Predictions by direction",
			},
			[]string{"direction"},
		),
	}
}

// ObserveRefresh records a finished refresh pass
func (r *Recorder) ObserveRefresh(status string, took time.Duration) {
	r.refreshes.WithLabelValues(status).Inc()
	r.latency.WithLabelValues("refresh").Observe(took.Seconds())
}

// ObserveFetchError records a failed fetch
func (r *Recorder) ObserveFetchError(source string) {
	r.fetchErrors.WithLabelValues(source).Inc()
}

// ObserveTraining records a training run
func (r *Recorder) ObserveTraining(result *models.TrainingResult, err error, took time.Duration) {
	r.latency.WithLabelValues("train").Observe(took.Seconds())
	r.trainings.WithLabelValues(trainingOutcome(err)).Inc()
	if err == nil && result != nil {
		r.accuracy.Set(result.Accuracy)
	}
}

// ObservePrediction records a fresh prediction
func (r *Recorder) ObservePrediction(result *models.PredictionResult) {
	if result == nil {
		return
	}
	r.predictions.WithLabelValues(string(result.Direction)).Inc()
	r.probability.Set(result.Probability)
}

func trainingOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, prediction.ErrSingleClass):
		return "single_class"
	case errors.Is(err, features.ErrInsufficientData):
		return "insufficient_data"
	default:
		return "failed"
	}
}
