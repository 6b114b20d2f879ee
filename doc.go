// Package lof implements Local Outlier Factor (LOF) scoring.
//
// LOF (Breunig, Kriegel, Ng, Sander; SIGMOD 2000) scores each point of a
// dataset by comparing its local density to the local densities of its
// neighbors. Scores near 1 indicate a point whose density matches its
// surroundings; scores well above 1 indicate a point in a markedly sparser
// neighborhood than its neighbors (an outlier).
//
// Basic usage:
//
//	cfg := lof.DefaultConfig()
//	cfg.K = 15
//	result, err := lof.Score(data, cfg)
//	// result.Scores[i] is the LOF score for point i
//
// To score the same dataset with several neighborhood sizes without
// rebuilding the spatial index, use a Scorer:
//
//	scorer, err := lof.NewScorer(data, cfg)
//	r10, err := scorer.Scores(10)
//	r50, err := scorer.Scores(50)
//
// # Index selection
//
// Neighbor queries are answered by a spatial index. By default
// (Index: "auto"), Score picks an index based on the metric and
// dimensionality: a KD-tree for axis-decomposable metrics on
// low-dimensional data, a ball tree for other metrics satisfying the
// triangle inequality, and a brute-force scan otherwise. Set Config.Index
// to force a strategy:
//
//	cfg.Index = lof.IndexBallTree // branch-and-bound ball tree
//	cfg.Index = lof.IndexKDTree   // axis-aligned box pruning
//	cfg.Index = lof.IndexBrute    // exhaustive scan
//
// The index is built once per Scorer and never mutated afterward, so
// concurrent queries need no locking.
package lof
