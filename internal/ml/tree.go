package ml

import (
	"math/rand"
	"sort"
)

// minGain keeps float noise from producing splits on already separated nodes
const minGain = 1e-12

type criterion int

const (
	squaredError criterion = iota
	gini
)

// Node is one decision of a binary tree. Leaves carry Value: the fitted
// output for regression trees, the share of class 1 for classification trees.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
	Value     float64 `json:"value"`

	samples []int
}

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool { return n.Left == nil }

// Tree is a fitted CART tree
type Tree struct {
	Root   *Node `json:"root"`
	Leaves int   `json:"leaves"`
	Depth  int   `json:"depth"`
}

// Predict walks row to a leaf and returns its value
func (t *Tree) Predict(row []float64) float64 {
	n := t.Root
	for !n.IsLeaf() {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

type treeConfig struct {
	criterion   criterion
	maxDepth    int // 0 grows until pure
	maxFeatures int // 0 inspects every feature
	rng         *rand.Rand
}

type builder struct {
	cfg    treeConfig
	X      [][]float64
	y      []float64
	width  int
	leaves []*Node
	depth  int
}

func growTree(cfg treeConfig, X [][]float64, y []float64, samples []int) (*Tree, []*Node) {
	b := &builder{cfg: cfg, X: X, y: y, width: len(X[0])}
	root := b.grow(samples, 0)
	return &Tree{Root: root, Leaves: len(b.leaves), Depth: b.depth}, b.leaves
}

type stats struct {
	n, sum, sumSq float64
}

func (s *stats) add(v float64) {
	s.n++
	s.sum += v
	s.sumSq += v * v
}

func (s stats) minus(o stats) stats {
	return stats{n: s.n - o.n, sum: s.sum - o.sum, sumSq: s.sumSq - o.sumSq}
}

// impurity returns the node's total (not per-sample) impurity
func (b *builder) impurity(s stats) float64 {
	if s.n == 0 {
		return 0
	}
	switch b.cfg.criterion {
	case gini:
		return 2 * s.sum * (s.n - s.sum) / s.n
	default:
		sse := s.sumSq - s.sum*s.sum/s.n
		if sse < 0 {
			return 0
		}
		return sse
	}
}

func (b *builder) grow(samples []int, depth int) *Node {
	if depth > b.depth {
		b.depth = depth
	}

	var total stats
	for _, i := range samples {
		total.add(b.y[i])
	}
	node := &Node{Value: total.sum / total.n}

	parent := b.impurity(total)
	if len(samples) < 2 || parent <= minGain || (b.cfg.maxDepth > 0 && depth >= b.cfg.maxDepth) {
		return b.leaf(node, samples)
	}

	feature, threshold, ok := b.bestSplit(samples, total, parent)
	if !ok {
		return b.leaf(node, samples)
	}

	left := make([]int, 0, len(samples))
	right := make([]int, 0, len(samples))
	for _, i := range samples {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = b.grow(left, depth+1)
	node.Right = b.grow(right, depth+1)
	return node
}

func (b *builder) leaf(node *Node, samples []int) *Node {
	node.samples = samples
	b.leaves = append(b.leaves, node)
	return node
}

// bestSplit scans candidate features in order and keeps the first split with
// the largest impurity decrease. When feature sampling is on, scanning goes on
// past maxFeatures until at least one valid split has been seen.
func (b *builder) bestSplit(samples []int, total stats, parent float64) (int, float64, bool) {
	order := make([]int, b.width)
	for j := range order {
		order[j] = j
	}
	limit := b.width
	if b.cfg.maxFeatures > 0 && b.cfg.maxFeatures < b.width && b.cfg.rng != nil {
		order = b.cfg.rng.Perm(b.width)
		limit = b.cfg.maxFeatures
	}

	sorted := make([]int, len(samples))
	bestGain := minGain
	bestFeature, bestThreshold, found := 0, 0.0, false

	for visited, feature := range order {
		if visited >= limit && found {
			break
		}

		copy(sorted, samples)
		f := feature
		sort.SliceStable(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })

		var left stats
		for k := 0; k < len(sorted)-1; k++ {
			left.add(b.y[sorted[k]])
			lo, hi := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			if lo >= hi {
				continue
			}
			gain := parent - b.impurity(left) - b.impurity(total.minus(left))
			if gain > bestGain {
				threshold := lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				bestGain, bestFeature, bestThreshold, found = gain, f, threshold, true
			}
		}
	}

	return bestFeature, bestThreshold, found
}
