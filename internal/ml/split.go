package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

var (
	// ErrEmpty is returned when there is nothing to fit on
	ErrEmpty = errors.New("empty training set")
	// ErrShape is returned when rows and labels disagree in size
	ErrShape = errors.New("inconsistent input shape")
	// ErrClassTooSmall is returned when a class cannot be represented on both sides of a split
	ErrClassTooSmall = errors.New("class has fewer than 2 members")
)

// StratifiedSplit shuffles each class with a seeded source and moves
// round(n_c*testSize) of its rows to the test side, keeping at least one row
// of every class on each side. Indices come back sorted.
func StratifiedSplit(y []int, testSize float64, seed int64) (train, test []int, err error) {
	if len(y) == 0 {
		return nil, nil, ErrEmpty
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size %.3f out of range (0, 1)", testSize)
	}

	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(seed))
	for _, c := range classes {
		members := byClass[c]
		if len(members) < 2 {
			return nil, nil, fmt.Errorf("%w: class %d has %d", ErrClassTooSmall, c, len(members))
		}
		rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })

		nTest := int(math.Round(float64(len(members)) * testSize))
		if nTest < 1 {
			nTest = 1
		}
		if nTest > len(members)-1 {
			nTest = len(members) - 1
		}
		test = append(test, members[:nTest]...)
		train = append(train, members[nTest:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// Take returns the rows and labels at idx
func Take(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	rows := make([][]float64, len(idx))
	labels := make([]int, len(idx))
	for i, j := range idx {
		rows[i] = X[j]
		labels[i] = y[j]
	}
	return rows, labels
}

// Accuracy is the share of matching labels
func Accuracy(want, got []int) float64 {
	if len(want) == 0 || len(want) != len(got) {
		return 0
	}
	hits := 0
	for i := range want {
		if want[i] == got[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(want))
}

func checkShape(X [][]float64, y []int) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmpty
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("%w: %d rows, %d labels", ErrShape, len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return 0, fmt.Errorf("%w: rows have no features", ErrShape)
	}
	for i, row := range X {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrShape, i, len(row), width)
		}
	}
	return width, nil
}
