package ml

import (
	"fmt"
	"math"
)

// BoostingConfig controls gradient boosting
type BoostingConfig struct {
	Estimators   int
	LearningRate float64
	MaxDepth     int
}

// DefaultBoosting matches the classic 100 trees, 0.1 shrinkage, depth 3 setup
func DefaultBoosting() BoostingConfig {
	return BoostingConfig{Estimators: 100, LearningRate: 0.1, MaxDepth: 3}
}

// GradientBoosting is a binary classifier built from regression trees fitted
// to the gradient of the binomial deviance.
type GradientBoosting struct {
	Init         float64 `json:"init"`
	LearningRate float64 `json:"learning_rate"`
	Trees        []*Tree `json:"trees"`
}

// FitGradientBoosting fits the boosted ensemble on 0/1 labels
func FitGradientBoosting(X [][]float64, y []int, cfg BoostingConfig) (*GradientBoosting, error) {
	if _, err := checkShape(X, y); err != nil {
		return nil, err
	}
	if cfg.Estimators < 1 || cfg.LearningRate <= 0 || cfg.MaxDepth < 1 {
		return nil, fmt.Errorf("invalid boosting config %+v", cfg)
	}

	positives := 0
	for _, label := range y {
		positives += label
	}
	if positives == 0 || positives == len(y) {
		return nil, fmt.Errorf("%w: boosting needs both classes", ErrClassTooSmall)
	}
	prior := float64(positives) / float64(len(y))

	m := &GradientBoosting{
		Init:         math.Log(prior / (1 - prior)),
		LearningRate: cfg.LearningRate,
		Trees:        make([]*Tree, 0, cfg.Estimators),
	}

	raw := make([]float64, len(y))
	for i := range raw {
		raw[i] = m.Init
	}
	residual := make([]float64, len(y))
	samples := make([]int, len(y))
	for i := range samples {
		samples[i] = i
	}

	tc := treeConfig{criterion: squaredError, maxDepth: cfg.MaxDepth}
	for round := 0; round < cfg.Estimators; round++ {
		for i := range y {
			residual[i] = float64(y[i]) - sigmoid(raw[i])
		}

		tree, leaves := growTree(tc, X, residual, samples)
		for _, leaf := range leaves {
			var num, den float64
			for _, i := range leaf.samples {
				p := sigmoid(raw[i])
				num += residual[i]
				den += p * (1 - p)
			}
			if den < 1e-150 {
				leaf.Value = 0
			} else {
				leaf.Value = num / den
			}
			for _, i := range leaf.samples {
				raw[i] += cfg.LearningRate * leaf.Value
			}
			leaf.samples = nil
		}
		m.Trees = append(m.Trees, tree)
	}

	return m, nil
}

// Probability returns P(label = 1) for row
func (m *GradientBoosting) Probability(row []float64) float64 {
	raw := m.Init
	for _, t := range m.Trees {
		raw += m.LearningRate * t.Predict(row)
	}
	return sigmoid(raw)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
