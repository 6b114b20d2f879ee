package lof

// BruteIndex answers neighbor queries by scanning every point. It has no
// construction cost beyond copying the data and works with any
// DistanceMetric, including ones that violate the triangle inequality.
// It is also the reference implementation the tree indexes are tested
// against.
type BruteIndex struct {
	data   []float64 // flat row-major point data (n * dims)
	n      int
	dims   int
	metric DistanceMetric
}

// NewBruteIndex builds a brute-force index over flat row-major data with n
// points of dimensionality dims.
func NewBruteIndex(data []float64, n, dims int, metric DistanceMetric) *BruteIndex {
	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	return &BruteIndex{data: dataCopy, n: n, dims: dims, metric: metric}
}

// --- NeighborIndex interface ---

func (b *BruteIndex) NumPoints() int   { return b.n }
func (b *BruteIndex) NumFeatures() int { return b.dims }

// KNearest returns the k nearest neighbors of target by exhaustive scan,
// omitting the point with original index exclude.
func (b *BruteIndex) KNearest(target []float64, k int, exclude int) ([]Neighbor, error) {
	if k < 1 {
		return nil, errInvalidK(k)
	}
	if b.n == 0 {
		return nil, ErrEmptyIndex
	}

	q, err := NewBoundedMaxHeap(k)
	if err != nil {
		return nil, err
	}
	for i := 0; i < b.n; i++ {
		if i == exclude {
			continue
		}
		pt := b.data[i*b.dims : (i+1)*b.dims]
		q.Insert(i, b.metric.Distance(target, pt))
	}
	return q.ExtractAllSorted(), nil
}

// WithinRadius returns every point with distance to target <= radius,
// omitting exclude, in ascending (Distance, Index) order.
func (b *BruteIndex) WithinRadius(target []float64, radius float64, exclude int) []Neighbor {
	var result []Neighbor
	for i := 0; i < b.n; i++ {
		if i == exclude {
			continue
		}
		pt := b.data[i*b.dims : (i+1)*b.dims]
		if d := b.metric.Distance(target, pt); d <= radius {
			result = append(result, Neighbor{Index: i, Distance: d})
		}
	}
	sortNeighbors(result)
	return result
}
