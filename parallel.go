package lof

import "github.com/sourcegraph/conc/pool"

// computeNeighborhoods finds every point's tie-inclusive k-distance
// neighborhood and k-distance. With cfg.Workers > 1 the points are split
// into contiguous chunks fanned out over a bounded goroutine pool; workers
// share the immutable index, own private queue state, and write to disjoint
// slots, so the output is bitwise identical to the serial path.
func (s *Scorer) computeNeighborhoods(k int) ([][]Neighbor, []float64, error) {
	hoods := make([][]Neighbor, s.n)
	kDists := make([]float64, s.n)

	if s.cfg.Workers <= 1 || s.n <= 1 {
		for i := 0; i < s.n; i++ {
			hood, kd, err := s.neighborhoodOf(i, k)
			if err != nil {
				return nil, nil, err
			}
			hoods[i] = hood
			kDists[i] = kd
		}
		return hoods, kDists, nil
	}

	p := pool.New().WithMaxGoroutines(s.cfg.Workers).WithErrors()
	chunk := (s.n + s.cfg.Workers - 1) / s.cfg.Workers

	for start := 0; start < s.n; start += chunk {
		start := start // pre-Go 1.22 loop variable capture
		end := start + chunk
		if end > s.n {
			end = s.n
		}
		p.Go(func() error {
			for i := start; i < end; i++ {
				hood, kd, err := s.neighborhoodOf(i, k)
				if err != nil {
					return err
				}
				hoods[i] = hood
				kDists[i] = kd
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, nil, err
	}
	return hoods, kDists, nil
}
