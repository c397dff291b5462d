// Command train prepares the dataset (or falls back to synthetic data),
// fits the forest and saves the model artifact.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raysh454/phishscan/internal/app"
	"github.com/raysh454/phishscan/internal/classifier"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/training"
)

func main() {
	cfg := app.LoadConfig()

	in := flag.String("in", cfg.SampleCSV(), "Labeled url,label input (.csv or .xlsx)")
	trees := flag.Int("trees", classifier.DefaultNumTrees, "Number of trees")
	flag.Parse()

	logger := app.NewLogger(cfg, "train")

	a, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.Error("startup failed", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	defer a.Shutdown(context.Background())

	asm, err := a.PrepAssembler()
	if err != nil {
		logger.Error("creating extractor", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	params := classifier.DefaultParams()
	params.NumTrees = *trees

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := training.Train(ctx, training.Options{
		InputPath:     *in,
		ProcessedPath: cfg.ProcessedParquet(),
		ModelPath:     cfg.ModelPath(),
		Forest:        params,
		Extractor:     asm,
		Concurrency:   cfg.PrepConcurrency,
	}, logger)
	if err != nil {
		logger.Error("training failed", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	fmt.Print(out.Metrics.Report())
}
