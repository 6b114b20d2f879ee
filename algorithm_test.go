package lof

import "testing"

func TestSelectIndex_Auto(t *testing.T) {
	cases := []struct {
		name   string
		metric DistanceMetric
		dims   int
		want   Index
	}{
		{"euclidean low-dim", EuclideanMetric{}, 2, IndexKDTree},
		{"euclidean at cutoff", EuclideanMetric{}, 60, IndexKDTree},
		{"euclidean high-dim", EuclideanMetric{}, 61, IndexBallTree},
		{"manhattan low-dim", ManhattanMetric{}, 5, IndexKDTree},
		{"cosine", CosineMetric{}, 2, IndexBrute},
		{"custom func", DistanceFunc(func(a, b []float64) float64 { return 0 }), 2, IndexBrute},
	}

	for _, c := range cases {
		cfg := DefaultConfig()
		cfg.Metric = c.metric
		got, err := selectIndex(cfg, c.dims)
		if err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: selectIndex = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestSelectIndex_ForcedIncompatible(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metric = CosineMetric{}

	cfg.Index = IndexKDTree
	if _, err := selectIndex(cfg, 2); err == nil {
		t.Error("KD-tree with cosine metric: expected error")
	}

	cfg.Index = IndexBallTree
	if _, err := selectIndex(cfg, 2); err == nil {
		t.Error("ball tree with cosine metric: expected error")
	}

	cfg.Index = IndexBrute
	if _, err := selectIndex(cfg, 2); err != nil {
		t.Errorf("brute with cosine metric: unexpected error %v", err)
	}
}

func TestSelectIndex_ForcedValid(t *testing.T) {
	cfg := DefaultConfig()
	for _, idx := range []Index{IndexBrute, IndexKDTree, IndexBallTree} {
		cfg.Index = idx
		got, err := selectIndex(cfg, 2)
		if err != nil {
			t.Errorf("%q: unexpected error %v", idx, err)
		}
		if got != idx {
			t.Errorf("%q: selectIndex = %q, want forced choice honored", idx, got)
		}
	}
}

func TestBuildIndex_AllStrategies(t *testing.T) {
	data := []float64{0, 0, 1, 1, 2, 2}
	cfg := DefaultConfig()
	applyDefaults(&cfg)

	for _, idx := range []Index{IndexBrute, IndexKDTree, IndexBallTree} {
		index, err := buildIndex(idx, data, 3, 2, cfg)
		if err != nil {
			t.Fatalf("%q: %v", idx, err)
		}
		if index.NumPoints() != 3 {
			t.Errorf("%q: NumPoints() = %d, want 3", idx, index.NumPoints())
		}
	}
}
