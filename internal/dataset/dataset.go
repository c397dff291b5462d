// Package dataset loads labeled URLs, featurizes them and persists the
// processed table that training and evaluation share.
package dataset

import (
	"errors"

	"github.com/raysh454/phishscan/internal/features"
)

// ErrNoData is returned when an input yields no usable rows.
var ErrNoData = errors.New("no usable rows")

// LabeledURL is one input row after normalization: label 1 = phishing,
// 0 = legit.
type LabeledURL struct {
	URL   string
	Label int
}

// Example is a featurized LabeledURL.
type Example struct {
	URL      string
	Label    int
	Features features.Vector
}

// Matrix splits examples into the feature matrix and label vector used by
// the classifier.
func Matrix(examples []Example) ([]features.Vector, []int) {
	X := make([]features.Vector, len(examples))
	y := make([]int, len(examples))
	for i, e := range examples {
		X[i] = e.Features
		y[i] = e.Label
	}
	return X, y
}
