package ops

import (
	"math"
	"math/rand"

	"github.com/datamend/datamend-cli/internal/stats"
)

// Isolation forest parameters. The seed is fixed so detection is
// deterministic given identical inputs.
const (
	forestTrees      = 100
	forestSampleSize = 256
	forestSeed       = 42
)

type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode
	size    int
}

// avgPathLength is the expected path length of an unsuccessful BST
// search over n points, the normalizer from the isolation forest paper.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	f := float64(n)
	return 2*(math.Log(f-1)+0.5772156649) - 2*(f-1)/f
}

func buildIsoTree(features [][]float64, idx []int, depth, maxDepth int, rng *rand.Rand) *isoNode {
	if len(idx) <= 1 || depth >= maxDepth {
		return &isoNode{feature: -1, size: len(idx)}
	}
	feature := rng.Intn(len(features))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, i := range idx {
		v := features[feature][i]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return &isoNode{feature: -1, size: len(idx)}
	}
	split := lo + rng.Float64()*(hi-lo)
	var left, right []int
	for _, i := range idx {
		if features[feature][i] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &isoNode{
		feature: feature,
		split:   split,
		size:    len(idx),
		left:    buildIsoTree(features, left, depth+1, maxDepth, rng),
		right:   buildIsoTree(features, right, depth+1, maxDepth, rng),
	}
}

func (n *isoNode) pathLength(features [][]float64, row int, depth float64) float64 {
	if n.feature < 0 {
		return depth + avgPathLength(n.size)
	}
	if features[n.feature][row] < n.split {
		return n.left.pathLength(features, row, depth+1)
	}
	return n.right.pathLength(features, row, depth+1)
}

// isolationForestScores returns the anomaly score in (0,1) for each
// row; higher means more isolated. features is column-major.
func isolationForestScores(features [][]float64) []float64 {
	rows := len(features[0])
	scores := make([]float64, rows)
	if rows == 0 {
		return scores
	}
	rng := rand.New(rand.NewSource(forestSeed))
	sample := forestSampleSize
	if sample > rows {
		sample = rows
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sample)))) + 1

	trees := make([]*isoNode, forestTrees)
	for t := range trees {
		idx := rng.Perm(rows)[:sample]
		trees[t] = buildIsoTree(features, idx, 0, maxDepth, rng)
	}

	c := avgPathLength(sample)
	if c == 0 {
		c = 1
	}
	for i := 0; i < rows; i++ {
		sum := 0.0
		for _, tree := range trees {
			sum += tree.pathLength(features, i, 0)
		}
		scores[i] = math.Pow(2, -(sum/float64(forestTrees))/c)
	}
	return scores
}

func scoresAllEqual(scores []float64) bool {
	if len(scores) == 0 {
		return true
	}
	for _, s := range scores[1:] {
		if s != scores[0] {
			return false
		}
	}
	return true
}

// isolationForestDetect flags rows whose score reaches the
// (1-contamination) quantile. Uniform scores flag nothing.
func isolationForestDetect(features [][]float64, contamination float64) []bool {
	scores := isolationForestScores(features)
	mask := make([]bool, len(scores))
	if len(scores) == 0 || scoresAllEqual(scores) {
		return mask
	}
	threshold := stats.Quantile(scores, 1-contamination)
	for i, s := range scores {
		mask[i] = s >= threshold
	}
	return mask
}
