package dataset

import (
	"math/rand"

	"github.com/raysh454/phishscan/internal/features"
)

const (
	DefaultSyntheticSamples = 200
	DefaultSeed             = 42
)

// Per-class feature distributions for synthetic data: legit URLs are short,
// HTTPS and quiet; phishing URLs are long with forms, iframes and remote
// scripts. A zero std yields the mean exactly.
var (
	legitMean = features.Vector{30, 2, 0, 1, 0, 1, 0, 1, 3, 0}
	legitStd  = features.Vector{5, 1, 0, 0, 0, 1, 0, 1, 2, 0}
	phishMean = features.Vector{80, 5, 1, 0, 1, 3, 2, 1, 10, 1}
	phishStd  = features.Vector{10, 2, 0, 0, 0, 2, 1, 1, 5, 0}
)

// Synthetic generates n labeled vectors, half legit and half phishing, drawn
// from fixed normal distributions and shuffled. The output depends only on
// n and seed.
func Synthetic(n int, seed int64) ([]features.Vector, []int) {
	if n <= 0 {
		return nil, nil
	}
	rng := rand.New(rand.NewSource(seed))
	nLegit := n / 2

	X := make([]features.Vector, 0, n)
	y := make([]int, 0, n)
	for i := 0; i < n; i++ {
		mean, std, label := &legitMean, &legitStd, 0
		if i >= nLegit {
			mean, std, label = &phishMean, &phishStd, 1
		}
		var v features.Vector
		for j := range v {
			v[j] = mean[j] + std[j]*rng.NormFloat64()
		}
		X = append(X, v)
		y = append(y, label)
	}

	rng.Shuffle(n, func(i, j int) {
		X[i], X[j] = X[j], X[i]
		y[i], y[j] = y[j], y[i]
	})
	return X, y
}
