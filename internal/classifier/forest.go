package classifier

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"github.com/raysh454/phishscan/internal/features"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultNumTrees = 100
	DefaultSeed     = 42
)

// ErrNoTrainingData is returned by Fit for empty or mismatched inputs.
var ErrNoTrainingData = errors.New("no training data")

// Params controls forest growth. Zero values select defaults.
type Params struct {
	NumTrees       int   `json:"num_trees"`
	MaxDepth       int   `json:"max_depth"` // 0 = unbounded
	MinSamplesLeaf int   `json:"min_samples_leaf"`
	MaxFeatures    int   `json:"max_features"` // 0 = floor(sqrt(NumFeatures))
	Seed           int64 `json:"seed"`
}

// DefaultParams mirrors the baseline training configuration: 100 trees,
// seed 42, fully grown.
func DefaultParams() Params {
	return Params{NumTrees: DefaultNumTrees, MinSamplesLeaf: 1, Seed: DefaultSeed}
}

func (p Params) withDefaults() Params {
	if p.NumTrees <= 0 {
		p.NumTrees = DefaultNumTrees
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = 1
	}
	if p.MaxFeatures <= 0 || p.MaxFeatures > features.NumFeatures {
		p.MaxFeatures = int(math.Sqrt(float64(features.NumFeatures)))
	}
	return p
}

// node is one entry of a flattened tree. Leaves have Left == -1 and carry
// the fraction of phishing samples that reached them.
type node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
}

// Tree is a binary CART tree stored as a node slice; index 0 is the root.
type Tree struct {
	Nodes []node `json:"nodes"`
}

func (t *Tree) predict(v *features.Vector) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Left < 0 {
			return n.Value
		}
		if v[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Forest is a random forest classifier for the binary phishing/legit task.
// It implements Model.
type Forest struct {
	NumFeatures int    `json:"num_features"`
	Params      Params `json:"params"`
	Trees       []Tree `json:"trees"`
}

// NewForest returns an untrained forest.
func NewForest(p Params) *Forest {
	return &Forest{NumFeatures: features.NumFeatures, Params: p.withDefaults()}
}

// Fit grows the forest on X with labels y (0 = legit, 1 = phishing). Each
// tree gets its own seed drawn up front, so the result depends only on
// Params.Seed and the data, not on scheduling.
func (f *Forest) Fit(X []features.Vector, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("fit: %w (%d rows, %d labels)", ErrNoTrainingData, len(X), len(y))
	}
	for i, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("fit: row %d has label %d, want 0 or 1", i, label)
		}
	}

	p := f.Params.withDefaults()
	master := rand.New(rand.NewSource(p.Seed))
	seeds := make([]int64, p.NumTrees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]Tree, p.NumTrees)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range trees {
		i := i
		g.Go(func() error {
			b := &builder{X: X, y: y, p: p, rng: rand.New(rand.NewSource(seeds[i]))}
			trees[i] = b.grow(b.bootstrap())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.NumFeatures = features.NumFeatures
	f.Params = p
	f.Trees = trees
	return nil
}

// Probability is the mean phishing fraction over all trees. An untrained
// forest returns 0.
func (f *Forest) Probability(v features.Vector) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].predict(&v)
	}
	return sum / float64(len(f.Trees))
}

// Predict returns 1 when Probability(v) >= 0.5.
func (f *Forest) Predict(v features.Vector) int {
	if f.Probability(v) >= 0.5 {
		return 1
	}
	return 0
}

// ─── CART ──────────────────────────────────────────────────────────────

type builder struct {
	X     []features.Vector
	y     []int
	p     Params
	rng   *rand.Rand
	nodes []node
}

func (b *builder) bootstrap() []int {
	idx := make([]int, len(b.X))
	for i := range idx {
		idx[i] = b.rng.Intn(len(b.X))
	}
	return idx
}

func (b *builder) grow(idx []int) Tree {
	b.nodes = b.nodes[:0]
	b.split(idx, 0)
	return Tree{Nodes: append([]node(nil), b.nodes...)}
}

// split appends the subtree for idx and returns its node index.
func (b *builder) split(idx []int, depth int) int {
	pos := 0
	for _, i := range idx {
		pos += b.y[i]
	}
	self := len(b.nodes)
	b.nodes = append(b.nodes, node{Left: -1, Right: -1, Value: float64(pos) / float64(len(idx))})

	if pos == 0 || pos == len(idx) ||
		len(idx) < 2*b.p.MinSamplesLeaf ||
		(b.p.MaxDepth > 0 && depth >= b.p.MaxDepth) {
		return self
	}

	feat, thr, ok := b.bestSplit(idx, pos)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.split(left, depth+1)
	r := b.split(right, depth+1)
	b.nodes[self] = node{Feature: feat, Threshold: thr, Left: l, Right: r}
	return self
}

// bestSplit tries MaxFeatures randomly chosen features and returns the
// threshold with the lowest weighted gini impurity. When none of the sampled
// features separates the node, the remaining ones are tried too.
func (b *builder) bestSplit(idx []int, pos int) (int, float64, bool) {
	order := b.rng.Perm(features.NumFeatures)
	sorted := make([]int, len(idx))

	bestFeat, bestThr, bestScore := -1, 0.0, math.Inf(1)
	for k, feat := range order {
		if k >= b.p.MaxFeatures && bestFeat >= 0 {
			break
		}
		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool { return b.X[sorted[a]][feat] < b.X[sorted[c]][feat] })

		n := len(sorted)
		leftPos := 0
		for i := 0; i < n-1; i++ {
			leftPos += b.y[sorted[i]]
			lo, hi := b.X[sorted[i]][feat], b.X[sorted[i+1]][feat]
			if lo == hi {
				continue
			}
			nl, nr := i+1, n-i-1
			if nl < b.p.MinSamplesLeaf || nr < b.p.MinSamplesLeaf {
				continue
			}
			score := float64(nl)*gini(leftPos, nl) + float64(nr)*gini(pos-leftPos, nr)
			if score < bestScore {
				bestFeat, bestThr, bestScore = feat, lo+(hi-lo)/2, score
			}
		}
	}
	return bestFeat, bestThr, bestFeat >= 0
}

func gini(pos, n int) float64 {
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}
