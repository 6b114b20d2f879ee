package lof

import (
	"fmt"
	"math/rand"
	"testing"
)

func benchmarkData(n, dims int) [][]float64 {
	rng := rand.New(rand.NewSource(99))
	flat := randomData(rng, n, dims)
	data := make([][]float64, n)
	for i := range data {
		data[i] = flat[i*dims : (i+1)*dims]
	}
	return data
}

func BenchmarkNewBallTree(b *testing.B) {
	rng := rand.New(rand.NewSource(99))
	data := randomData(rng, 2000, 4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewBallTree(data, 2000, 4, EuclideanMetric{}, 40); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBallTree_KNearest(b *testing.B) {
	rng := rand.New(rand.NewSource(99))
	n, dims := 2000, 4
	data := randomData(rng, n, dims)
	tree, err := NewBallTree(data, n, dims, EuclideanMetric{}, 40)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q := i % n
		if _, err := tree.KNearest(data[q*dims:(q+1)*dims], 10, q); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkScore(b *testing.B) {
	for _, size := range []int{200, 1000} {
		data := benchmarkData(size, 4)
		cfg := DefaultConfig()
		cfg.K = 10

		b.Run(fmt.Sprintf("n%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Score(data, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkScore_IndexStrategies(b *testing.B) {
	data := benchmarkData(500, 4)

	for _, idx := range []Index{IndexBrute, IndexKDTree, IndexBallTree} {
		cfg := DefaultConfig()
		cfg.K = 10
		cfg.Index = idx
		b.Run(string(idx), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Score(data, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
