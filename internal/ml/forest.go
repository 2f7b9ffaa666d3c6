package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// ForestConfig controls random forest training
type ForestConfig struct {
	Estimators int
	// MaxFeatures is the number of candidate features per split, 0 picks sqrt(width)
	MaxFeatures int
	Seed        int64
	// Workers bounds concurrent tree fitting, 0 fits one tree per goroutine
	Workers int
}

// DefaultForest returns 100 fully grown trees seeded with 42
func DefaultForest() ForestConfig {
	return ForestConfig{Estimators: 100, Seed: 42}
}

// RandomForest averages the class-1 share of bootstrapped gini trees
type RandomForest struct {
	Trees []*Tree `json:"trees"`
}

// FitRandomForest fits the forest. Every tree draws its own seed from the
// master seed up front, so results do not depend on scheduling.
func FitRandomForest(X [][]float64, y []int, cfg ForestConfig) (*RandomForest, error) {
	width, err := checkShape(X, y)
	if err != nil {
		return nil, err
	}
	if cfg.Estimators < 1 {
		return nil, fmt.Errorf("invalid forest config %+v", cfg)
	}

	maxFeatures := cfg.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(width)))
	}
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	target := make([]float64, len(y))
	for i, label := range y {
		target[i] = float64(label)
	}

	master := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([]int64, cfg.Estimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	workers := cfg.Workers
	if workers <= 0 || workers > cfg.Estimators {
		workers = cfg.Estimators
	}

	forest := &RandomForest{Trees: make([]*Tree, cfg.Estimators)}
	failures := make([]error, cfg.Estimators)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				failures[t] = fitTree(forest, t, seeds[t], X, target, maxFeatures)
			}
		}()
	}
	for t := 0; t < cfg.Estimators; t++ {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	for t, err := range failures {
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", t, err)
		}
	}

	return forest, nil
}

func fitTree(forest *RandomForest, t int, seed int64, X [][]float64, target []float64, maxFeatures int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	rng := rand.New(rand.NewSource(seed))
	bootstrap := make([]int, len(target))
	for i := range bootstrap {
		bootstrap[i] = rng.Intn(len(target))
	}
	tc := treeConfig{criterion: gini, maxFeatures: maxFeatures, rng: rng}
	tree, leaves := growTree(tc, X, target, bootstrap)
	for _, leaf := range leaves {
		leaf.samples = nil
	}
	forest.Trees[t] = tree
	return nil
}

// Probability returns the mean class-1 share over all trees
func (f *RandomForest) Probability(row []float64) float64 {
	if len(f.Trees) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.Predict(row)
	}
	return sum / float64(len(f.Trees))
}
