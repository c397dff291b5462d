package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/raysh454/phishscan/internal/features"
	"github.com/raysh454/phishscan/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Extractor produces a feature vector for a normalized URL
// (satisfied by *features.Assembler).
type Extractor interface {
	Extract(ctx context.Context, url string) features.Vector
}

// Featurize extracts features for every row with at most concurrency
// extractions in flight. Output order matches input order. Extraction itself
// never fails; only context cancellation aborts the batch.
func Featurize(ctx context.Context, rows []LabeledURL, ext Extractor, concurrency int) ([]Example, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	out := make([]Example, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, r := range rows {
		i, r := i, r
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = Example{URL: r.URL, Label: r.Label, Features: ext.Extract(gctx, r.URL)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("featurize: %w", err)
	}
	return out, nil
}

// Process loads the labeled input at in, featurizes it and writes the
// processed table to out.
func Process(ctx context.Context, in, out string, ext Extractor, concurrency int, logger logging.Logger) ([]Example, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.With(logging.Field{Key: "component", Value: "dataset"})

	rows, err := Load(in, logger)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	examples, err := Featurize(ctx, rows, ext, concurrency)
	if err != nil {
		return nil, err
	}
	if err := WriteParquet(out, examples); err != nil {
		return nil, err
	}

	logger.Info("processed data saved",
		logging.Field{Key: "path", Value: out},
		logging.Field{Key: "rows", Value: len(examples)},
		logging.Field{Key: "duration", Value: time.Since(start).String()})
	return examples, nil
}
