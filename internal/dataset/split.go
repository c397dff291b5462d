package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/raysh454/phishscan/internal/features"
)

const DefaultTestFraction = 0.2

// Split is a train/test partition.
type Split struct {
	TrainX []features.Vector
	TrainY []int
	TestX  []features.Vector
	TestY  []int
}

// StratifiedSplit partitions X/y so each class keeps its proportion in both
// halves. The test size is ceil(testFraction*n), shared out between classes
// by largest remainder. Training and evaluation call it with the same seed
// and fraction, so evaluation sees exactly the rows training held out.
func StratifiedSplit(X []features.Vector, y []int, testFraction float64, seed int64) (Split, error) {
	n := len(X)
	if n != len(y) {
		return Split{}, fmt.Errorf("split: %d rows but %d labels", n, len(y))
	}
	if n < 2 {
		return Split{}, fmt.Errorf("split: %w: need at least 2 rows, have %d", ErrNoData, n)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return Split{}, errors.New("split: test fraction must be in (0,1)")
	}

	byClass := map[int][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}
	quota := allocate(nTest, classes, byClass, n)

	rng := rand.New(rand.NewSource(seed))
	var trainIdx, testIdx []int
	for _, c := range classes {
		idx := append([]int(nil), byClass[c]...)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		testIdx = append(testIdx, idx[:quota[c]]...)
		trainIdx = append(trainIdx, idx[quota[c]:]...)
	}
	rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })
	rng.Shuffle(len(testIdx), func(i, j int) { testIdx[i], testIdx[j] = testIdx[j], testIdx[i] })

	var s Split
	for _, i := range trainIdx {
		s.TrainX = append(s.TrainX, X[i])
		s.TrainY = append(s.TrainY, y[i])
	}
	for _, i := range testIdx {
		s.TestX = append(s.TestX, X[i])
		s.TestY = append(s.TestY, y[i])
	}
	return s, nil
}

// allocate shares nTest between classes proportionally, handing leftover
// slots to the largest fractional remainders (ties to the smaller label).
func allocate(nTest int, classes []int, byClass map[int][]int, n int) map[int]int {
	quota := make(map[int]int, len(classes))
	type rem struct {
		class int
		frac  float64
	}
	rems := make([]rem, 0, len(classes))
	given := 0
	for _, c := range classes {
		exact := float64(nTest) * float64(len(byClass[c])) / float64(n)
		q := int(math.Floor(exact))
		quota[c] = q
		given += q
		rems = append(rems, rem{c, exact - float64(q)})
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for i := 0; given < nTest && i < len(rems); i++ {
		c := rems[i].class
		if quota[c] < len(byClass[c]) {
			quota[c]++
			given++
		}
	}
	return quota
}
