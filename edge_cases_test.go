package lof

import (
	"math"
	"math/rand"
	"testing"
)

func TestScore_TwoPoints(t *testing.T) {
	cfg := DefaultConfig()
	cfg.K = 1

	result, err := Score(oneDim(0, 7), cfg)
	if err != nil {
		t.Fatal(err)
	}
	// Each point is the other's only neighbor; densities agree exactly.
	for i, score := range result.Scores {
		if score != 1.0 {
			t.Errorf("Scores[%d] = %v, want 1.0", i, score)
		}
	}
}

func TestScore_KEqualsNMinusOne(t *testing.T) {
	rng := rand.New(rand.NewSource(71))
	n, dims := 12, 2
	flat := randomData(rng, n, dims)
	data := make([][]float64, n)
	for i := range data {
		data[i] = flat[i*dims : (i+1)*dims]
	}

	cfg := DefaultConfig()
	cfg.K = n - 1

	result, err := Score(data, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i, score := range result.Scores {
		if math.IsNaN(score) || score < 0 {
			t.Errorf("Scores[%d] = %v, want non-negative non-NaN", i, score)
		}
	}
}

func TestScore_SingleDimension(t *testing.T) {
	cfg := DefaultConfig()
	cfg.K = 2

	result, err := Score(oneDim(1, 1.5, 2, 2.5, 3, 50), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.Scores[5] <= 1 {
		t.Errorf("outlier score = %v, want > 1", result.Scores[5])
	}
}

func TestScore_HighDimensional(t *testing.T) {
	// 70 dimensions forces the auto path onto the ball tree.
	rng := rand.New(rand.NewSource(72))
	n, dims := 15, 70
	flat := randomData(rng, n, dims)
	data := make([][]float64, n)
	for i := range data {
		data[i] = flat[i*dims : (i+1)*dims]
	}

	cfg := DefaultConfig()
	cfg.K = 3

	result, err := Score(data, cfg)
	if err != nil {
		t.Fatal(err)
	}

	// Cross-check against the brute index.
	cfg.Index = IndexBrute
	brute, err := Score(data, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := range result.Scores {
		if math.Abs(result.Scores[i]-brute.Scores[i]) > floatTol {
			t.Errorf("Scores[%d]: auto=%v brute=%v", i, result.Scores[i], brute.Scores[i])
		}
	}
}

func TestScore_ManhattanMetric(t *testing.T) {
	data := [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {20, 20}}
	cfg := DefaultConfig()
	cfg.K = 2
	cfg.Metric = ManhattanMetric{}

	result, err := Score(data, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.Scores[4] <= 1 {
		t.Errorf("outlier score = %v, want > 1", result.Scores[4])
	}
}

func TestScorer_ConcurrentScoresCalls(t *testing.T) {
	// The index is immutable after construction, so concurrent Scores
	// calls on one Scorer must race-cleanly produce identical results.
	rng := rand.New(rand.NewSource(73))
	n, dims := 30, 2
	flat := randomData(rng, n, dims)
	data := make([][]float64, n)
	for i := range data {
		data[i] = flat[i*dims : (i+1)*dims]
	}

	scorer, err := NewScorer(data, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	base, err := scorer.Scores(4)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan *Result, 4)
	for g := 0; g < 4; g++ {
		go func() {
			r, err := scorer.Scores(4)
			if err != nil {
				t.Error(err)
				done <- nil
				return
			}
			done <- r
		}()
	}
	for g := 0; g < 4; g++ {
		r := <-done
		if r == nil {
			continue
		}
		for i := range base.Scores {
			if r.Scores[i] != base.Scores[i] {
				t.Errorf("goroutine result diverges at %d: %v vs %v", i, r.Scores[i], base.Scores[i])
			}
		}
	}
}
