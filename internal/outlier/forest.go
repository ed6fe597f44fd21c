package outlier

import (
	"math"
	"math/rand"
)

// Forest parameters. The seed is fixed so repeated runs on identical
// input produce identical flags; reports must be reproducible.
const (
	DefaultTrees      = 100
	DefaultSampleSize = 256
	DefaultSeed       = 42
)

// isolationForest is an ensemble of randomized partitioning trees. A
// point's anomaly score derives from the average number of random splits
// needed to isolate it; anomalous points isolate in fewer splits.
type isolationForest struct {
	trees      []*isoNode
	sampleSize int
}

// isoNode is one node of an isolation tree. Leaf nodes record the size
// of the subsample that reached them.
type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode
	size    int
	isLeaf  bool
}

// fitForest builds the ensemble over the row-major feature matrix using
// the given deterministic random source.
func fitForest(matrix [][]float64, trees, sampleSize int, rng *rand.Rand) *isolationForest {
	n := len(matrix)
	if sampleSize > n {
		sampleSize = n
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize))))
	if maxDepth < 1 {
		maxDepth = 1
	}

	f := &isolationForest{sampleSize: sampleSize}
	for t := 0; t < trees; t++ {
		sample := make([][]float64, 0, sampleSize)
		for _, idx := range rng.Perm(n)[:sampleSize] {
			sample = append(sample, matrix[idx])
		}
		f.trees = append(f.trees, buildTree(sample, 0, maxDepth, rng))
	}
	return f
}

func buildTree(rows [][]float64, depth, maxDepth int, rng *rand.Rand) *isoNode {
	if len(rows) <= 1 || depth >= maxDepth {
		return &isoNode{isLeaf: true, size: len(rows)}
	}

	nFeatures := len(rows[0])
	feature := rng.Intn(nFeatures)

	min, max := rows[0][feature], rows[0][feature]
	for _, row := range rows[1:] {
		if row[feature] < min {
			min = row[feature]
		}
		if row[feature] > max {
			max = row[feature]
		}
	}
	if min == max {
		// No split possible on this feature for this subsample.
		return &isoNode{isLeaf: true, size: len(rows)}
	}

	split := min + rng.Float64()*(max-min)
	var left, right [][]float64
	for _, row := range rows {
		if row[feature] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &isoNode{isLeaf: true, size: len(rows)}
	}

	return &isoNode{
		feature: feature,
		split:   split,
		left:    buildTree(left, depth+1, maxDepth, rng),
		right:   buildTree(right, depth+1, maxDepth, rng),
	}
}

// pathLength walks one tree for a point, adding the average-path
// adjustment c(size) at the leaf so truncated subtrees still contribute
// their expected depth.
func (n *isoNode) pathLength(point []float64, depth float64) float64 {
	if n.isLeaf {
		return depth + avgPathLength(n.size)
	}
	if point[n.feature] < n.split {
		return n.left.pathLength(point, depth+1)
	}
	return n.right.pathLength(point, depth+1)
}

// score returns the normalized anomaly score s(x) = 2^(-E[h(x)]/c(n)).
// Scores approach 1 for anomalies and sit near 0.5 for average points.
func (f *isolationForest) score(point []float64) float64 {
	sum := 0.0
	for _, tree := range f.trees {
		sum += tree.pathLength(point, 0)
	}
	mean := sum / float64(len(f.trees))
	return math.Pow(2, -mean/avgPathLength(f.sampleSize))
}

// eulerGamma is the Euler-Mascheroni constant used in the harmonic
// number approximation.
const eulerGamma = 0.5772156649

// avgPathLength is c(n), the expected path length of an unsuccessful
// search in a binary search tree of n points.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + eulerGamma
	return 2*h - 2*float64(n-1)/float64(n)
}
