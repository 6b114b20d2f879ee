package lof

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ReachabilityDistance returns the reachability distance of point p from
// neighbor o: max(k-distance(o), d(p, o)). The clamp smooths distances
// inside dense clusters so that points very close to a cluster core do not
// receive artificially tiny values.
func ReachabilityDistance(kDistO, distPO float64) float64 {
	return math.Max(kDistO, distPO)
}

// meanReachability computes the mean reachability distance from a point to
// its k-distance neighborhood, given each neighbor's own k-distance.
func meanReachability(neighborhood []Neighbor, kDistances []float64) float64 {
	reach := make([]float64, len(neighborhood))
	for i, o := range neighborhood {
		reach[i] = ReachabilityDistance(kDistances[o.Index], o.Distance)
	}
	return stat.Mean(reach, nil)
}

// localReachabilityDensity converts a mean reachability distance into
// lrd(p) = 1 / mean. A zero mean (p coincides with at least k duplicates
// whose own k-distances are 0) yields the +Inf maximal-density sentinel
// rather than a division.
func localReachabilityDensity(meanReach float64) float64 {
	if meanReach == 0 {
		return math.Inf(1)
	}
	return 1 / meanReach
}

// lofRatio computes LOF(p) = mean(lrd(o)) / lrd(p) over the neighborhood.
// Since lrd(p) = 1/meanReachP, the ratio is evaluated as
// mean(lrd(o)) * meanReachP, which keeps hand-computable cases exact by
// avoiding a double reciprocal. Sentinel policy for infinite densities:
// when meanReachP is 0 (infinite own density) the ratio is 1 if every
// neighbor density is also +Inf (a pure duplicate cluster) and 0
// otherwise; a finite own density with an infinite neighbor density
// yields +Inf. The result is never NaN.
func lofRatio(neighborhood []Neighbor, lrd []float64, meanReachP float64) float64 {
	if meanReachP == 0 {
		for _, o := range neighborhood {
			if !math.IsInf(lrd[o.Index], 1) {
				return 0
			}
		}
		return 1
	}

	var sum float64
	for _, o := range neighborhood {
		sum += lrd[o.Index]
	}
	return sum / float64(len(neighborhood)) * meanReachP
}
