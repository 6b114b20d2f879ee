package lof

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// BallTree is an immutable ball tree spatial index for nearest-neighbor
// queries. Each node stores a centroid and a radius bounding every point in
// its subtree; the bound max(0, d(target, centroid) - radius) on the
// distance from a query target to any point inside is what permits
// branch-and-bound pruning.
//
// Nodes live in an arena addressed by index: internal nodes reference their
// children by arena position, leaves hold a contiguous range of the index
// permutation array. There are no back-pointers and no mutation after
// construction.
type BallTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int       // number of points
	dims     int       // dimensionality
	leafSize int
	metric   DistanceMetric
	idxArray []int // permutation: tree-order position → original index
	nodes    []ballNode
	// centroids[node*dims .. (node+1)*dims) = centroid of node
	centroids []float64
}

// ballNode is a tagged leaf/internal variant. Leaves have left == -1;
// internal nodes reference both children by arena index.
type ballNode struct {
	idxStart, idxEnd int // range in idxArray covered by this subtree
	left, right      int // child arena indices; -1 for a leaf
	radius           float64
}

func (nd ballNode) isLeaf() bool { return nd.left < 0 }

// NewBallTree builds a ball tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node.
// Returns ErrInvalidLeafSize if leafSize < 1. A tree over zero points is
// valid to build but fails every query with ErrEmptyIndex.
func NewBallTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) (*BallTree, error) {
	if leafSize < 1 {
		return nil, errInvalidLeafSize(leafSize)
	}

	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	t := &BallTree{
		data:     dataCopy,
		n:        n,
		dims:     dims,
		leafSize: leafSize,
		metric:   metric,
		idxArray: idxArray,
	}

	if n > 0 {
		t.nodes = make([]ballNode, 0, 2*((n+leafSize-1)/leafSize))
		t.buildNode(0, n)
	}

	return t, nil
}

// point returns the coordinate slice for the point with original index i.
func (t *BallTree) point(i int) []float64 {
	return t.data[i*t.dims : (i+1)*t.dims]
}

// buildNode recursively builds the subtree over idxArray[start:end] and
// returns its arena index.
func (t *BallTree) buildNode(start, end int) int {
	nodeID := len(t.nodes)
	t.nodes = append(t.nodes, ballNode{idxStart: start, idxEnd: end, left: -1, right: -1})
	t.centroids = append(t.centroids, make([]float64, t.dims)...)

	t.computeCentroid(nodeID, start, end)

	// Radius: max distance from centroid to any point in this subtree.
	centroid := t.centroids[nodeID*t.dims : (nodeID+1)*t.dims]
	var radius float64
	for i := start; i < end; i++ {
		d := t.metric.Distance(centroid, t.point(t.idxArray[i]))
		if d > radius {
			radius = d
		}
	}
	t.nodes[nodeID].radius = radius

	if end-start <= t.leafSize {
		return nodeID
	}

	mid := t.partitionByPivots(start, end)
	if mid == start || mid == end {
		// Degenerate: every point landed on one pivot. Fall back to
		// splitting the widest-spread dimension at the positional median,
		// which always yields two non-empty sides.
		splitDim := t.findSpreadDim(start, end)
		t.sortByDim(start, end, splitDim)
		mid = start + (end-start)/2
	}

	left := t.buildNode(start, mid)
	right := t.buildNode(mid, end)
	t.nodes[nodeID].left = left
	t.nodes[nodeID].right = right
	return nodeID
}

// computeCentroid stores the mean of points idxArray[start:end] in the
// centroids array at nodeID.
func (t *BallTree) computeCentroid(nodeID, start, end int) {
	centroid := t.centroids[nodeID*t.dims : (nodeID+1)*t.dims]
	for i := start; i < end; i++ {
		floats.Add(centroid, t.point(t.idxArray[i]))
	}
	floats.Scale(1/float64(end-start), centroid)
}

// partitionByPivots selects two far-apart pivot points with a two-pass
// greedy sweep (the farthest point from an arbitrary start, then the
// farthest point from that) and partitions idxArray[start:end] by which
// pivot each point is nearer to. Returns the boundary position: points in
// [start, mid) are nearer pivot A, points in [mid, end) nearer pivot B.
func (t *BallTree) partitionByPivots(start, end int) int {
	pivotA := t.farthestFrom(t.point(t.idxArray[start]), start, end)
	pivotB := t.farthestFrom(t.point(pivotA), start, end)
	ptA := t.point(pivotA)
	ptB := t.point(pivotB)

	nearA := make([]int, 0, end-start)
	nearB := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx := t.idxArray[i]
		pt := t.point(idx)
		if t.metric.Distance(pt, ptA) <= t.metric.Distance(pt, ptB) {
			nearA = append(nearA, idx)
		} else {
			nearB = append(nearB, idx)
		}
	}

	copy(t.idxArray[start:], nearA)
	copy(t.idxArray[start+len(nearA):], nearB)
	return start + len(nearA)
}

// farthestFrom returns the original index of the point in idxArray[start:end]
// farthest from the given coordinates. Ties keep the first occurrence so the
// partition is reproducible.
func (t *BallTree) farthestFrom(from []float64, start, end int) int {
	best := t.idxArray[start]
	bestDist := -1.0
	for i := start; i < end; i++ {
		idx := t.idxArray[i]
		d := t.metric.Distance(from, t.point(idx))
		if d > bestDist {
			bestDist = d
			best = idx
		}
	}
	return best
}

// findSpreadDim returns the dimension with the greatest spread among
// points in idxArray[start:end].
func (t *BallTree) findSpreadDim(start, end int) int {
	bestDim := 0
	bestSpread := -1.0
	for d := 0; d < t.dims; d++ {
		col := make([]float64, 0, end-start)
		for i := start; i < end; i++ {
			col = append(col, t.data[t.idxArray[i]*t.dims+d])
		}
		min, max := floats.Min(col), floats.Max(col)
		if spread := max - min; spread > bestSpread {
			bestSpread = spread
			bestDim = d
		}
	}
	return bestDim
}

// sortByDim sorts idxArray[start:end] by the given dimension, breaking
// coordinate ties by original index to keep the split order deterministic.
func (t *BallTree) sortByDim(start, end, dim int) {
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

func (t *BallTree) NumPoints() int   { return t.n }
func (t *BallTree) NumFeatures() int { return t.dims }

// NumNodes returns the number of nodes in the arena.
func (t *BallTree) NumNodes() int { return len(t.nodes) }

// KNearest returns the k nearest neighbors of target, omitting the point
// with original index exclude (pass NoExclude to omit nothing). Results are
// in ascending (Distance, Index) order.
func (t *BallTree) KNearest(target []float64, k int, exclude int) ([]Neighbor, error) {
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

// knnSearch performs the branch-and-bound k-NN traversal.
func (t *BallTree) knnSearch(nodeID int, target []float64, exclude int, q *BoundedMaxHeap) {
	node := t.nodes[nodeID]

	if node.isLeaf() {
		for i := node.idxStart; i < node.idxEnd; i++ {
			ptIdx := t.idxArray[i]
			if ptIdx == exclude {
				continue
			}
			q.Insert(ptIdx, t.metric.Distance(target, t.point(ptIdx)))
		}
		return
	}

	leftBound := t.minDistToNode(node.left, target)
	rightBound := t.minDistToNode(node.right, target)

	nearChild, farChild := node.left, node.right
	nearBound, farBound := leftBound, rightBound
	if rightBound < leftBound {
		nearChild, farChild = node.right, node.left
		nearBound, farBound = rightBound, leftBound
	}

	if boundAdmits(nearBound, q.MaxPriority()) {
		t.knnSearch(nearChild, target, exclude, q)
	}
	if boundAdmits(farBound, q.MaxPriority()) {
		t.knnSearch(farChild, target, exclude, q)
	}
}

// minDistToNode returns a lower bound on the distance from target to any
// point in the given node's subtree: max(0, d(target, centroid) - radius).
func (t *BallTree) minDistToNode(nodeID int, target []float64) float64 {
	centroid := t.centroids[nodeID*t.dims : (nodeID+1)*t.dims]
	d := t.metric.Distance(target, centroid) - t.nodes[nodeID].radius
	if d < 0 {
		return 0
	}
	return d
}

// WithinRadius returns every point with distance to target <= radius,
// omitting exclude, in ascending (Distance, Index) order.
func (t *BallTree) WithinRadius(target []float64, radius float64, exclude int) []Neighbor {
	if t.n == 0 {
		return nil
	}
	var result []Neighbor
	t.radiusSearch(0, target, radius, exclude, &result)
	sortNeighbors(result)
	return result
}

// radiusSearch collects points within radius, pruning subtrees whose lower
// bound exceeds it.
func (t *BallTree) radiusSearch(nodeID int, target []float64, radius float64, exclude int, out *[]Neighbor) {
	node := t.nodes[nodeID]

	if node.isLeaf() {
		for i := node.idxStart; i < node.idxEnd; i++ {
			ptIdx := t.idxArray[i]
			if ptIdx == exclude {
				continue
			}
			if d := t.metric.Distance(target, t.point(ptIdx)); d <= radius {
				*out = append(*out, Neighbor{Index: ptIdx, Distance: d})
			}
		}
		return
	}

	if boundAdmits(t.minDistToNode(node.left, target), radius) {
		t.radiusSearch(node.left, target, radius, exclude, out)
	}
	if boundAdmits(t.minDistToNode(node.right, target), radius) {
		t.radiusSearch(node.right, target, radius, exclude, out)
	}
}
