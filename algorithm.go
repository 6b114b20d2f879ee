package lof

import "fmt"

// Index selects the neighbor-index strategy.
type Index string

const (
	IndexAuto     Index = "auto"
	IndexBrute    Index = "brute"
	IndexKDTree   Index = "kdtree"
	IndexBallTree Index = "balltree"
)

// KDTreeValidMetric reports whether the metric supports KD-tree acceleration.
// KD-trees require metrics that decompose along coordinate axes:
// Euclidean, Manhattan, Chebyshev, Minkowski.
func KDTreeValidMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// BallTreeValidMetric reports whether the metric supports ball tree
// acceleration. Ball trees work with any metric satisfying the triangle
// inequality. Currently accepts the same set as KDTreeValidMetric; future
// metrics (e.g. Haversine) can be added here without also adding them there.
func BallTreeValidMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// selectIndex resolves IndexAuto into a concrete strategy based on the
// metric and data dimensionality, and validates that user-forced choices
// are compatible with the metric.
func selectIndex(cfg Config, dims int) (Index, error) {
	idx := cfg.Index

	if idx == IndexAuto {
		if !BallTreeValidMetric(cfg.Metric) {
			return IndexBrute, nil
		}
		if KDTreeValidMetric(cfg.Metric) && dims <= 60 {
			return IndexKDTree, nil
		}
		return IndexBallTree, nil
	}

	switch idx {
	case IndexKDTree:
		if !KDTreeValidMetric(cfg.Metric) {
			return "", fmt.Errorf("lof: metric %T is not supported by the KD-tree index", cfg.Metric)
		}
	case IndexBallTree:
		if !BallTreeValidMetric(cfg.Metric) {
			return "", fmt.Errorf("lof: metric %T is not supported by the ball tree index", cfg.Metric)
		}
	}

	return idx, nil
}

// buildIndex constructs the neighbor index named by idx over flat row-major
// data.
func buildIndex(idx Index, data []float64, n, dims int, cfg Config) (NeighborIndex, error) {
	switch idx {
	case IndexKDTree:
		return NewKDTree(data, n, dims, cfg.Metric, cfg.LeafSize)
	case IndexBallTree:
		return NewBallTree(data, n, dims, cfg.Metric, cfg.LeafSize)
	default:
		return NewBruteIndex(data, n, dims, cfg.Metric), nil
	}
}
