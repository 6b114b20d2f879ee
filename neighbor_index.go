package lof

// Neighbor is a single k-NN query result: the original index of the
// neighboring point and its distance from the query target.
type Neighbor struct {
	Index    int
	Distance float64
}

// NoExclude is the exclude argument meaning "exclude nothing".
const NoExclude = -1

// NeighborIndex is the read interface shared by the ball tree, KD-tree and
// brute-force indexes. An index is built once over a complete dataset and
// is immutable afterward, so all methods are safe for concurrent use.
type NeighborIndex interface {
	// KNearest returns the k nearest neighbors of target in ascending
	// (Distance, Index) order. exclude names a point index to omit from
	// the results (pass NoExclude for none); excluding the query point
	// itself is the common case when target is a member of the index.
	// Fails with ErrInvalidK when k < 1 and ErrEmptyIndex when the index
	// holds no points.
	KNearest(target []float64, k int, exclude int) ([]Neighbor, error)

	// WithinRadius returns every point whose distance to target is <= radius,
	// in ascending (Distance, Index) order, omitting exclude. Point
	// distances are computed through the same code path as KNearest, so a
	// radius taken from a KNearest result includes the boundary neighbors.
	WithinRadius(target []float64, radius float64, exclude int) []Neighbor

	// NumPoints returns the number of points in the index.
	NumPoints() int

	// NumFeatures returns the dimensionality of each point.
	NumFeatures() int
}

// pruneSlack is the relative tolerance applied when comparing a subtree
// lower bound against a pruning limit. The bound arithmetic (centroid minus
// radius, box gaps) differs from the leaf distance path and can round a few
// ulps above the true distance to a point inside the subtree, which matters
// because k-distance queries sit exactly on a neighbor's distance.
const pruneSlack = 1e-12

// boundAdmits reports whether a subtree with the given lower bound may hold
// points at or within limit. Leaves test exact distances, so the slack only
// admits extra subtree visits, never extra results.
func boundAdmits(bound, limit float64) bool {
	return bound <= limit+pruneSlack*limit
}
