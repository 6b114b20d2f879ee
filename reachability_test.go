package lof

import (
	"math"
	"testing"
)

func TestReachabilityDistance_ClampsToKDistance(t *testing.T) {
	// A point very close to a dense neighbor is pushed out to the
	// neighbor's own k-distance.
	if got := ReachabilityDistance(2.0, 0.5); got != 2.0 {
		t.Errorf("ReachabilityDistance(2, 0.5) = %v, want 2", got)
	}
	// Beyond the neighbor's k-distance the true distance wins.
	if got := ReachabilityDistance(2.0, 7.0); got != 7.0 {
		t.Errorf("ReachabilityDistance(2, 7) = %v, want 7", got)
	}
}

func TestMeanReachability(t *testing.T) {
	// Neighbors at distances 1 and 3, both with k-distance 0.5: neither is
	// clamped, so the mean reachability is 2.
	hood := []Neighbor{{Index: 0, Distance: 1}, {Index: 1, Distance: 3}}
	kDist := []float64{0.5, 0.5}
	if got := meanReachability(hood, kDist); math.Abs(got-2) > floatTol {
		t.Errorf("meanReachability = %v, want 2", got)
	}

	// A neighbor with a large k-distance clamps the pair upward.
	kDist = []float64{4, 0.5}
	if got := meanReachability(hood, kDist); math.Abs(got-3.5) > floatTol {
		t.Errorf("meanReachability = %v, want 3.5", got)
	}
}

func TestLocalReachabilityDensity_Basic(t *testing.T) {
	if got := localReachabilityDensity(2); math.Abs(got-0.5) > floatTol {
		t.Errorf("lrd = %v, want 0.5", got)
	}
}

func TestLocalReachabilityDensity_InfSentinel(t *testing.T) {
	// A zero mean reachability yields the +Inf sentinel, never a division
	// by zero.
	if got := localReachabilityDensity(0); !math.IsInf(got, 1) {
		t.Errorf("lrd = %v, want +Inf", got)
	}
}

func TestLofRatio_FiniteDensities(t *testing.T) {
	hood := []Neighbor{{Index: 0}, {Index: 1}}
	lrd := []float64{2, 4}
	// mean(2, 4) * (1/3) = 1, for an own density of 3.
	if got := lofRatio(hood, lrd, 1.0/3.0); math.Abs(got-1) > floatTol {
		t.Errorf("lofRatio = %v, want 1", got)
	}
}

func TestLofRatio_InfOwnDensity(t *testing.T) {
	inf := math.Inf(1)

	// Zero mean reachability means an infinite own density. When all
	// neighbors share it the score is 1.
	hood := []Neighbor{{Index: 0}, {Index: 1}}
	if got := lofRatio(hood, []float64{inf, inf}, 0); got != 1 {
		t.Errorf("all-Inf neighborhood: lofRatio = %v, want 1", got)
	}

	// A finite-density neighbor collapses the ratio to 0.
	if got := lofRatio(hood, []float64{inf, 5}, 0); got != 0 {
		t.Errorf("mixed neighborhood: lofRatio = %v, want 0", got)
	}
}

func TestLofRatio_InfNeighborDensity(t *testing.T) {
	// A finite own density with an infinite neighbor density yields +Inf,
	// not NaN.
	hood := []Neighbor{{Index: 0}}
	got := lofRatio(hood, []float64{math.Inf(1)}, 0.5)
	if !math.IsInf(got, 1) {
		t.Errorf("lofRatio = %v, want +Inf", got)
	}
	if math.IsNaN(got) {
		t.Error("lofRatio produced NaN")
	}
}
