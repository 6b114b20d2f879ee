package lof

import (
	"math"
	"sort"
)

// KDTree is an immutable KD-tree spatial index with the same query contract
// as BallTree. Points are stored in a flat row-major array and reordered
// internally via an index permutation array.
//
// The tree is stored as a complete binary tree in array form: node i has
// children at 2*i+1 and 2*i+2. Node bounds are stored as min/max per
// dimension per node, and the query lower bound is the distance from the
// target to the node's axis-aligned bounding box. Only axis-decomposable
// metrics (Euclidean, Manhattan, Chebyshev, Minkowski) are supported; see
// KDTreeValidMetric.
type KDTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int       // number of points
	dims     int       // dimensionality
	leafSize int
	metric   DistanceMetric
	idxArray []int // permutation: tree-order position → original index
	nodes    []kdNode
	// nodeBoundsMin[node*dims + j] = min value of feature j in node
	nodeBoundsMin []float64
	// nodeBoundsMax[node*dims + j] = max value of feature j in node
	nodeBoundsMax []float64
}

type kdNode struct {
	idxStart, idxEnd int
	isLeaf           bool
	initialized      bool
}

// NewKDTree builds a KD-tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node.
// Returns ErrInvalidLeafSize if leafSize < 1.
func NewKDTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) (*KDTree, error) {
	if leafSize < 1 {
		return nil, errInvalidLeafSize(leafSize)
	}

	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := kdMaxNodes(n, leafSize)
	t := &KDTree{
		data:          dataCopy,
		n:             n,
		dims:          dims,
		leafSize:      leafSize,
		metric:        metric,
		idxArray:      idxArray,
		nodes:         make([]kdNode, maxNodes),
		nodeBoundsMin: make([]float64, maxNodes*dims),
		nodeBoundsMax: make([]float64, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
	}

	return t, nil
}

// kdMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	// Depth of tree: ceil(log2(ceil(n/leafSize))) + 1.
	// Number of nodes in a complete binary tree of depth d = 2^(d+1) - 1.
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2 // +2 for safety margin
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *KDTree) buildNode(nodeID, start, end int) {
	// Grow arrays if needed (shouldn't happen with a good upper bound).
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, kdNode{})
		t.nodeBoundsMin = append(t.nodeBoundsMin, make([]float64, t.dims)...)
		t.nodeBoundsMax = append(t.nodeBoundsMax, make([]float64, t.dims)...)
	}

	t.computeNodeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = kdNode{idxStart: start, idxEnd: end, isLeaf: true, initialized: true}
		return
	}

	// Find dimension with greatest spread.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		spread := t.nodeBoundsMax[nodeID*t.dims+d] - t.nodeBoundsMin[nodeID*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	// Sort by the split dimension and split at the median.
	t.sortByDimension(start, end, splitDim)
	mid := start + count/2

	t.nodes[nodeID] = kdNode{idxStart: start, idxEnd: end, isLeaf: false, initialized: true}

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeNodeBounds computes min/max per dimension for points idxArray[start:end].
func (t *KDTree) computeNodeBounds(nodeID, start, end int) {
	base := nodeID * t.dims
	for d := 0; d < t.dims; d++ {
		t.nodeBoundsMin[base+d] = math.Inf(1)
		t.nodeBoundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		ptIdx := t.idxArray[i]
		for d := 0; d < t.dims; d++ {
			v := t.data[ptIdx*t.dims+d]
			if v < t.nodeBoundsMin[base+d] {
				t.nodeBoundsMin[base+d] = v
			}
			if v > t.nodeBoundsMax[base+d] {
				t.nodeBoundsMax[base+d] = v
			}
		}
	}
}

// sortByDimension sorts idxArray[start:end] by the given dimension, with
// original index as the tie-break.
func (t *KDTree) sortByDimension(start, end, dim int) {
	sub := t.idxArray[start:end]
	dims := t.dims
	data := t.data
	sort.Slice(sub, func(i, j int) bool {
		vi, vj := data[sub[i]*dims+dim], data[sub[j]*dims+dim]
		if vi != vj {
			return vi < vj
		}
		return sub[i] < sub[j]
	})
}

// --- NeighborIndex interface ---

func (t *KDTree) NumPoints() int   { return t.n }
func (t *KDTree) NumFeatures() int { return t.dims }

// KNearest returns the k nearest neighbors of target, omitting the point
// with original index exclude (pass NoExclude to omit nothing).
func (t *KDTree) KNearest(target []float64, k int, exclude int) ([]Neighbor, error) {
	if k < 1 {
		return nil, errInvalidK(k)
	}
	if t.n == 0 {
		return nil, ErrEmptyIndex
	}

	q, err := NewBoundedMaxHeap(k)
	if err != nil {
		return nil, err
	}
	t.knnSearch(0, target, exclude, q)
	return q.ExtractAllSorted(), nil
}

// knnSearch performs the branch-and-bound k-NN traversal using box bounds.
func (t *KDTree) knnSearch(nodeID int, target []float64, exclude int, q *BoundedMaxHeap) {
	if nodeID >= len(t.nodes) || !t.nodes[nodeID].initialized {
		return
	}
	node := t.nodes[nodeID]

	if node.isLeaf {
		for i := node.idxStart; i < node.idxEnd; i++ {
			ptIdx := t.idxArray[i]
			if ptIdx == exclude {
				continue
			}
			pt := t.data[ptIdx*t.dims : (ptIdx+1)*t.dims]
			q.Insert(ptIdx, t.metric.Distance(target, pt))
		}
		return
	}

	left := 2*nodeID + 1
	right := 2*nodeID + 2

	leftBound := t.minDistToBox(left, target)
	rightBound := t.minDistToBox(right, target)

	nearChild, farChild := left, right
	nearBound, farBound := leftBound, rightBound
	if rightBound < leftBound {
		nearChild, farChild = right, left
		nearBound, farBound = rightBound, leftBound
	}

	if boundAdmits(nearBound, q.MaxPriority()) {
		t.knnSearch(nearChild, target, exclude, q)
	}
	if boundAdmits(farBound, q.MaxPriority()) {
		t.knnSearch(farChild, target, exclude, q)
	}
}

// minDistToBox returns a lower bound on the distance from target to any
// point in the node's axis-aligned bounding box: the metric applied to the
// per-dimension gaps between target and the box.
func (t *KDTree) minDistToBox(nodeID int, target []float64) float64 {
	if nodeID >= len(t.nodes) || !t.nodes[nodeID].initialized {
		return math.Inf(1)
	}
	base := nodeID * t.dims
	p := metricP(t.metric)

	if math.IsInf(p, 1) {
		// Chebyshev: the largest per-dimension gap.
		var bound float64
		for j := 0; j < t.dims; j++ {
			if g := t.boxGap(base, j, target[j]); g > bound {
				bound = g
			}
		}
		return bound
	}

	var sum float64
	for j := 0; j < t.dims; j++ {
		g := t.boxGap(base, j, target[j])
		if p == 2 {
			sum += g * g
		} else if p == 1 {
			sum += g
		} else {
			sum += math.Pow(g, p)
		}
	}
	switch p {
	case 2:
		return math.Sqrt(sum)
	case 1:
		return sum
	default:
		return math.Pow(sum, 1/p)
	}
}

// boxGap returns the distance from coordinate v to the node's bounds along
// dimension j, or 0 when v lies inside them.
func (t *KDTree) boxGap(base, j int, v float64) float64 {
	lo := t.nodeBoundsMin[base+j]
	hi := t.nodeBoundsMax[base+j]
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}

// WithinRadius returns every point with distance to target <= radius,
// omitting exclude, in ascending (Distance, Index) order.
func (t *KDTree) WithinRadius(target []float64, radius float64, exclude int) []Neighbor {
	if t.n == 0 {
		return nil
	}
	var result []Neighbor
	t.radiusSearch(0, target, radius, exclude, &result)
	sortNeighbors(result)
	return result
}

func (t *KDTree) radiusSearch(nodeID int, target []float64, radius float64, exclude int, out *[]Neighbor) {
	if nodeID >= len(t.nodes) || !t.nodes[nodeID].initialized {
		return
	}
	node := t.nodes[nodeID]

	if node.isLeaf {
		for i := node.idxStart; i < node.idxEnd; i++ {
			ptIdx := t.idxArray[i]
			if ptIdx == exclude {
				continue
			}
			pt := t.data[ptIdx*t.dims : (ptIdx+1)*t.dims]
			if d := t.metric.Distance(target, pt); d <= radius {
				*out = append(*out, Neighbor{Index: ptIdx, Distance: d})
			}
		}
		return
	}

	if boundAdmits(t.minDistToBox(2*nodeID+1, target), radius) {
		t.radiusSearch(2*nodeID+1, target, radius, exclude, out)
	}
	if boundAdmits(t.minDistToBox(2*nodeID+2, target), radius) {
		t.radiusSearch(2*nodeID+2, target, radius, exclude, out)
	}
}
