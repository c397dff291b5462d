package training_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raysh454/phishscan/internal/classifier"
	"github.com/raysh454/phishscan/internal/features"
	"github.com/raysh454/phishscan/internal/testutil"
	"github.com/raysh454/phishscan/internal/training"
)

type lengthExtractor struct{}

func (lengthExtractor) Extract(_ context.Context, url string) features.Vector {
	return features.Vector{float64(len(url))}
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ─── Metrics ───────────────────────────────────────────────────────────

func TestComputeMetrics_KnownConfusion(t *testing.T) {
	t.Parallel()
	yTrue := []int{1, 1, 1, 1, 0, 0, 0, 0, 0, 0}
	yPred := []int{1, 1, 1, 0, 1, 0, 0, 0, 0, 0}

	m := training.ComputeMetrics(yTrue, yPred, nil)
	want := training.Confusion{TP: 3, FP: 1, TN: 5, FN: 1}
	if m.Confusion != want {
		t.Fatalf("confusion = %+v, want %+v", m.Confusion, want)
	}
	if !almost(m.Accuracy, 0.8) || !almost(m.Precision, 0.75) || !almost(m.Recall, 0.75) || !almost(m.F1, 0.75) {
		t.Errorf("unexpected metrics %+v", m)
	}
	if m.ROCAUC != 0 {
		t.Errorf("roc_auc should be unset without probabilities, got %v", m.ROCAUC)
	}
}

func TestComputeMetrics_NoPositivePredictions(t *testing.T) {
	t.Parallel()
	m := training.ComputeMetrics([]int{1, 0}, []int{0, 0}, nil)
	if m.Precision != 0 || m.Recall != 0 || m.F1 != 0 {
		t.Errorf("undefined ratios should be 0, got %+v", m)
	}
}

func TestROCAUC(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		yTrue  []int
		scores []float64
		want   float64
	}{
		{"perfect", []int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9}, 1},
		{"inverted", []int{1, 1, 0, 0}, []float64{0.1, 0.2, 0.8, 0.9}, 0},
		{"all tied", []int{0, 1, 0, 1}, []float64{0.5, 0.5, 0.5, 0.5}, 0.5},
		{"one swap", []int{0, 1, 0, 1}, []float64{0.1, 0.3, 0.4, 0.9}, 0.75},
		{"single class", []int{1, 1}, []float64{0.2, 0.7}, 0.5},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			pred := make([]int, len(tc.yTrue))
			m := training.ComputeMetrics(tc.yTrue, pred, tc.scores)
			if !almost(m.ROCAUC, tc.want) {
				t.Errorf("roc_auc = %v, want %v", m.ROCAUC, tc.want)
			}
		})
	}
}

func TestMetricsReport(t *testing.T) {
	t.Parallel()
	r := training.ComputeMetrics([]int{1, 0}, []int{1, 0}, []float64{0.9, 0.1}).Report()
	for _, want := range []string{"precision", "legit", "phishing", "accuracy", "roc_auc"} {
		if !strings.Contains(r, want) {
			t.Errorf("report missing %q:\n%s", want, r)
		}
	}
}

// ─── Train / Evaluate ──────────────────────────────────────────────────

func options(dir string) training.Options {
	return training.Options{
		InputPath:     filepath.Join(dir, "sample_urls.csv"),
		ProcessedPath: filepath.Join(dir, "processed.parquet"),
		ModelPath:     filepath.Join(dir, "models", "baseline.json"),
		Forest:        classifier.Params{NumTrees: 10, Seed: 42},
		Extractor:     lengthExtractor{},
		Concurrency:   2,
	}
}

func writeSample(t *testing.T, path string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("url,label\n")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "https://s%d.example,0\n", i)
		fmt.Fprintf(&b, "http://account-verify-%d.secure-update.example/signin/confirm,1\n", i)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTrain_SyntheticFallbackWhenInputMissing(t *testing.T) {
	t.Parallel()
	opts := options(t.TempDir())
	logger := &testutil.DummyLogger{}

	out, err := training.Train(context.Background(), opts, logger)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if out.Source != training.SourceSynthetic || out.Rows != 200 {
		t.Errorf("unexpected outcome source=%s rows=%d", out.Source, out.Rows)
	}
	if logger.WarnCount() == 0 {
		t.Error("expected a warning about synthetic fallback")
	}
	if out.Metrics.Accuracy < 0.9 {
		t.Errorf("synthetic classes are well separated; accuracy = %v", out.Metrics.Accuracy)
	}
	if _, err := classifier.Load(opts.ModelPath); err != nil {
		t.Errorf("model not saved: %v", err)
	}
}

func TestTrain_BadInputIsNotMaskedBySynthetic(t *testing.T) {
	t.Parallel()
	opts := options(t.TempDir())
	if err := os.WriteFile(opts.InputPath, []byte("link\nx\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := training.Train(context.Background(), opts, nil); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

func TestTrainThenEvaluate_SameHeldOutSplit(t *testing.T) {
	t.Parallel()
	opts := options(t.TempDir())
	writeSample(t, opts.InputPath)

	out, err := training.Train(context.Background(), opts, nil)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if out.Source != training.SourceInput || out.Rows != 40 {
		t.Fatalf("unexpected outcome source=%s rows=%d", out.Source, out.Rows)
	}

	m, err := training.Evaluate(opts, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if m != out.Metrics {
		t.Errorf("evaluation metrics %+v differ from training hold-out %+v", m, out.Metrics)
	}
	if m.Accuracy != 1 {
		t.Errorf("length separates the sample perfectly; accuracy = %v", m.Accuracy)
	}
}

func TestEvaluate_FailsClosed(t *testing.T) {
	t.Parallel()
	opts := options(t.TempDir())

	if _, err := training.Evaluate(opts, nil); !errors.Is(err, classifier.ErrModelNotFound) {
		t.Errorf("missing model: got %v", err)
	}

	// Synthetic training saves a model but no processed artifact.
	if _, err := training.Train(context.Background(), opts, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := training.Evaluate(opts, nil); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing parquet: got %v", err)
	}
}
