package lof

import (
	"errors"
	"fmt"
	"runtime"
)

// Error sentinels for the failure kinds this package can report. All are
// detected eagerly from the input and configuration; none is retryable.
var (
	// ErrEmptyDataset is returned when scoring is requested on zero points.
	ErrEmptyDataset = errors.New("lof: dataset is empty")

	// ErrDimensionMismatch is returned when input points differ in
	// coordinate-vector length.
	ErrDimensionMismatch = errors.New("lof: points have mismatched dimensionality")

	// ErrInvalidK is returned when k < 1, or when k is not smaller than the
	// number of points (every point needs k neighbors other than itself).
	ErrInvalidK = errors.New("lof: k out of range")

	// ErrInvalidLeafSize is returned when an index is built with a
	// non-positive leaf size.
	ErrInvalidLeafSize = errors.New("lof: leaf size must be >= 1")

	// ErrInvalidCapacity is returned when a BoundedMaxHeap is created with
	// capacity < 1.
	ErrInvalidCapacity = errors.New("lof: queue capacity must be >= 1")

	// ErrEmptyIndex is returned by neighbor queries against an index that
	// holds no points.
	ErrEmptyIndex = errors.New("lof: query on an empty index")
)

func errInvalidK(k int) error {
	return fmt.Errorf("%w: k must be >= 1, got %d", ErrInvalidK, k)
}

func errInvalidKRange(k, n int) error {
	return fmt.Errorf("%w: k must be in [1, %d) for %d points, got %d", ErrInvalidK, n, n, k)
}

func errInvalidLeafSize(leafSize int) error {
	return fmt.Errorf("%w: got %d", ErrInvalidLeafSize, leafSize)
}

func errInvalidCapacity(capacity int) error {
	return fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
}

// Config controls LOF scoring behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// K is the neighborhood size. Each point is scored against its K
	// nearest neighbors (plus any points tied at the K-th distance).
	// Must be >= 1 and < the number of points. Default: 10.
	K int

	// Metric is the distance function used to measure point similarity.
	// Built-in: EuclideanMetric, ManhattanMetric, ChebyshevMetric,
	// MinkowskiMetric, CosineMetric. Use DistanceFunc to wrap a custom
	// function. Default: EuclideanMetric.
	Metric DistanceMetric

	// Index selects the neighbor-index strategy. "auto" picks a KD-tree
	// for axis-decomposable metrics on low-dimensional data, a ball tree
	// for other triangle-inequality metrics, and brute force otherwise.
	// Default: "auto".
	Index Index

	// LeafSize controls the maximum number of points in a spatial tree
	// leaf node. Larger values trade pruning precision for faster tree
	// construction. Only used with tree indexes. Default: 40.
	LeafSize int

	// Workers controls the number of goroutines used to fan the per-point
	// neighbor queries out over the shared immutable index. Results are
	// identical for every worker count. 0 means runtime.NumCPU().
	// Default: 0 (auto).
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		K:      10,
		Metric: EuclideanMetric{},
		Index:  IndexAuto,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Index == "" {
		cfg.Index = IndexAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 40
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive
// error if not.
func validateConfig(cfg *Config) error {
	if cfg.K < 1 {
		return errInvalidK(cfg.K)
	}
	if cfg.LeafSize < 1 {
		return errInvalidLeafSize(cfg.LeafSize)
	}
	switch cfg.Index {
	case IndexAuto, IndexBrute, IndexKDTree, IndexBallTree:
		// valid
	default:
		return fmt.Errorf("lof: invalid Index %q", cfg.Index)
	}
	return nil
}

// Result contains the output of LOF scoring.
type Result struct {
	// Scores[i] is the LOF score for point i. Values near 1 indicate a
	// point whose local density matches its neighbors'; values well above
	// 1 indicate relative sparsity (outlier-ness); values below 1 indicate
	// a denser-than-average region. Scores are non-negative and never NaN,
	// but can be +Inf next to fully duplicated clusters.
	Scores []float64

	// KDistances[i] is the distance from point i to its K-th nearest
	// neighbor, counting ties at the boundary.
	KDistances []float64

	// LocalReachabilityDensities[i] is lrd(i), the inverse of the mean
	// reachability distance from point i to its neighborhood. +Inf marks
	// a point coinciding with at least K zero-k-distance duplicates.
	LocalReachabilityDensities []float64
}

// Scorer computes LOF scores against a spatial index built once over a
// dataset. The index is immutable, so one Scorer can serve Scores calls
// with different k values, and concurrent calls, without rebuilding.
type Scorer struct {
	index NeighborIndex
	data  []float64 // flat row-major copy of the input points
	n     int
	dims  int
	cfg   Config
}

// NewScorer validates data and cfg, builds the neighbor index, and returns
// a Scorer. Fails with ErrEmptyDataset on zero points, ErrDimensionMismatch
// when rows differ in length, or a config error; no partial results.
func NewScorer(data [][]float64, cfg Config) (*Scorer, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	n := len(data)
	if n == 0 {
		return nil, ErrEmptyDataset
	}
	dims := len(data[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: point 0 has no coordinates", ErrDimensionMismatch)
	}
	for i, row := range data {
		if len(row) != dims {
			return nil, fmt.Errorf("%w: point %d has %d coordinates, want %d",
				ErrDimensionMismatch, i, len(row), dims)
		}
	}

	flat := make([]float64, n*dims)
	for i, row := range data {
		copy(flat[i*dims:], row)
	}

	idx, err := selectIndex(cfg, dims)
	if err != nil {
		return nil, err
	}
	index, err := buildIndex(idx, flat, n, dims, cfg)
	if err != nil {
		return nil, err
	}

	return &Scorer{index: index, data: flat, n: n, dims: dims, cfg: cfg}, nil
}

// NumPoints returns the number of points the Scorer was built over.
func (s *Scorer) NumPoints() int { return s.n }

// point returns the coordinate slice for point i.
func (s *Scorer) point(i int) []float64 {
	return s.data[i*s.dims : (i+1)*s.dims]
}

// Neighborhood returns the k-distance neighborhood of point i: every point
// whose distance to i is <= the k-th smallest neighbor distance, in
// ascending (Distance, Index) order. Its size is >= k whenever ties occur
// at the boundary. Fails with ErrInvalidK when k < 1 or k >= NumPoints().
func (s *Scorer) Neighborhood(i, k int) ([]Neighbor, error) {
	if k < 1 || k >= s.n {
		return nil, errInvalidKRange(k, s.n)
	}
	if i < 0 || i >= s.n {
		return nil, fmt.Errorf("lof: point index %d out of range [0, %d)", i, s.n)
	}
	hood, _, err := s.neighborhoodOf(i, k)
	return hood, err
}

// neighborhoodOf computes the tie-inclusive k-distance neighborhood of
// point i and its k-distance. The k nearest neighbors establish the
// k-distance, then a radius re-query at that distance recovers every point
// tied at the boundary. Leaf distance tests share a code path with
// KNearest, but the trees' subtree pruning bounds do not, so the two
// result sets are merged: the k nearest can never be lost to the radius
// query, and the neighborhood size is always >= k.
func (s *Scorer) neighborhoodOf(i, k int) ([]Neighbor, float64, error) {
	target := s.point(i)
	nearest, err := s.index.KNearest(target, k, i)
	if err != nil {
		return nil, 0, err
	}
	kDist := nearest[len(nearest)-1].Distance
	hood := s.index.WithinRadius(target, kDist, i)
	return unionNeighbors(nearest, hood), kDist, nil
}

// unionNeighbors merges two neighbor lists, each in ascending
// (Distance, Index) order, into one such list with duplicate indices
// dropped. A point appearing in both lists carries the same distance in
// each, so the merge frontier aligns on equal indices.
func unionNeighbors(a, b []Neighbor) []Neighbor {
	out := make([]Neighbor, 0, len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index == b[j].Index:
			out = append(out, a[i])
			i++
			j++
		case a[i].Distance < b[j].Distance ||
			(a[i].Distance == b[j].Distance && a[i].Index < b[j].Index):
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Scores computes the LOF score of every point using neighborhoods of size
// k. Fails with ErrInvalidK when k < 1 or k >= NumPoints(). The result is
// deterministic: identical across repeated calls, iteration orders, and
// worker counts.
func (s *Scorer) Scores(k int) (*Result, error) {
	if k < 1 || k >= s.n {
		return nil, errInvalidKRange(k, s.n)
	}

	hoods, kDists, err := s.computeNeighborhoods(k)
	if err != nil {
		return nil, err
	}

	meanReach := make([]float64, s.n)
	lrd := make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		meanReach[i] = meanReachability(hoods[i], kDists)
		lrd[i] = localReachabilityDensity(meanReach[i])
	}

	scores := make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		scores[i] = lofRatio(hoods[i], lrd, meanReach[i])
	}

	return &Result{
		Scores:                     scores,
		KDistances:                 kDists,
		LocalReachabilityDensities: lrd,
	}, nil
}

// Score performs LOF scoring on the given data in one shot: build the
// index, score with cfg.K. Each element of data is a point; all points
// must have the same dimensionality.
func Score(data [][]float64, cfg Config) (*Result, error) {
	scorer, err := NewScorer(data, cfg)
	if err != nil {
		return nil, err
	}
	return scorer.Scores(scorer.cfg.K)
}
