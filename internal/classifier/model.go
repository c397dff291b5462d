// Package classifier holds the phishing model: a random forest over the
// 10-value feature vector, its on-disk artifact and a load-once cache.
package classifier

import "github.com/raysh454/phishscan/internal/features"

// Model scores a feature vector. Probability returns the phishing class
// probability in [0,1]. Implementations are immutable after construction and
// safe for concurrent use.
type Model interface {
	Probability(v features.Vector) float64
}
