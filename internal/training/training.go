// Package training fits and evaluates the phishing classifier on the
// processed dataset.
package training

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/raysh454/phishscan/internal/classifier"
	"github.com/raysh454/phishscan/internal/dataset"
	"github.com/raysh454/phishscan/internal/features"
	"github.com/raysh454/phishscan/internal/logging"
)

// Options locates the artifacts and fixes the split discipline.
type Options struct {
	InputPath     string // labeled CSV/XLSX
	ProcessedPath string // Parquet written by preparation
	ModelPath     string

	TestFraction float64
	Seed         int64
	Forest       classifier.Params

	// Extractor featurizes input rows when training from InputPath.
	Extractor   dataset.Extractor
	Concurrency int
}

func (o Options) withDefaults() Options {
	if o.TestFraction <= 0 {
		o.TestFraction = dataset.DefaultTestFraction
	}
	if o.Seed == 0 {
		o.Seed = dataset.DefaultSeed
	}
	if o.Forest.NumTrees == 0 && o.Forest.Seed == 0 {
		o.Forest = classifier.DefaultParams()
	}
	return o
}

// Source tells which data a model was trained on.
type Source string

const (
	SourceInput     Source = "input"
	SourceSynthetic Source = "synthetic"
)

// Outcome is what Train produced.
type Outcome struct {
	Source  Source
	Rows    int
	Metrics Metrics
	Model   *classifier.Forest
}

// Train prepares the dataset from InputPath, fits a forest on the training
// split, reports held-out metrics and saves the model. When InputPath does
// not exist it warns and trains on synthetic data instead; any other input
// error is returned.
func Train(ctx context.Context, opts Options, logger logging.Logger) (*Outcome, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.With(logging.Field{Key: "component", Value: "training"})
	opts = opts.withDefaults()

	X, y, source, err := trainingData(ctx, opts, logger)
	if err != nil {
		return nil, err
	}

	split, err := dataset.StratifiedSplit(X, y, opts.TestFraction, opts.Seed)
	if err != nil {
		return nil, err
	}

	forest := classifier.NewForest(opts.Forest)
	if err := forest.Fit(split.TrainX, split.TrainY); err != nil {
		return nil, err
	}
	m := score(forest, split.TestX, split.TestY)
	logMetrics(logger, m)

	if err := classifier.Save(opts.ModelPath, forest); err != nil {
		return nil, err
	}
	logger.Info("model saved", logging.Field{Key: "path", Value: opts.ModelPath})

	return &Outcome{Source: source, Rows: len(X), Metrics: m, Model: forest}, nil
}

func trainingData(ctx context.Context, opts Options, logger logging.Logger) ([]features.Vector, []int, Source, error) {
	if opts.Extractor == nil {
		return nil, nil, "", errors.New("train: no feature extractor configured")
	}
	examples, err := dataset.Process(ctx, opts.InputPath, opts.ProcessedPath, opts.Extractor, opts.Concurrency, logger)
	switch {
	case err == nil:
		logger.Info("using labeled input", logging.Field{Key: "path", Value: opts.InputPath})
		X, y := dataset.Matrix(examples)
		return X, y, SourceInput, nil
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("input not found, using synthetic data",
			logging.Field{Key: "path", Value: opts.InputPath},
			logging.Field{Key: "samples", Value: dataset.DefaultSyntheticSamples})
		X, y := dataset.Synthetic(dataset.DefaultSyntheticSamples, opts.Seed)
		return X, y, SourceSynthetic, nil
	default:
		return nil, nil, "", fmt.Errorf("train: %w", err)
	}
}

// Evaluate scores the saved model on the held-out split of the processed
// artifact. It has no fallback: a missing model or artifact is an error.
func Evaluate(opts Options, logger logging.Logger) (Metrics, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.With(logging.Field{Key: "component", Value: "evaluation"})
	opts = opts.withDefaults()

	forest, err := classifier.Load(opts.ModelPath)
	if err != nil {
		return Metrics{}, fmt.Errorf("evaluate: %w", err)
	}
	examples, err := dataset.ReadParquet(opts.ProcessedPath)
	if err != nil {
		return Metrics{}, fmt.Errorf("evaluate: %w", err)
	}

	X, y := dataset.Matrix(examples)
	split, err := dataset.StratifiedSplit(X, y, opts.TestFraction, opts.Seed)
	if err != nil {
		return Metrics{}, fmt.Errorf("evaluate: %w", err)
	}

	m := score(forest, split.TestX, split.TestY)
	logMetrics(logger, m)
	logger.Info("evaluation complete", logging.Field{Key: "test_rows", Value: len(split.TestY)})
	return m, nil
}

func score(model classifier.Model, X []features.Vector, y []int) Metrics {
	pred := make([]int, len(X))
	proba := make([]float64, len(X))
	for i, v := range X {
		proba[i] = model.Probability(v)
		if proba[i] >= 0.5 {
			pred[i] = 1
		}
	}
	return ComputeMetrics(y, pred, proba)
}

func logMetrics(logger logging.Logger, m Metrics) {
	logger.Info("metrics",
		logging.Field{Key: "accuracy", Value: m.Accuracy},
		logging.Field{Key: "precision", Value: m.Precision},
		logging.Field{Key: "recall", Value: m.Recall},
		logging.Field{Key: "f1", Value: m.F1},
		logging.Field{Key: "roc_auc", Value: m.ROCAUC})
}
