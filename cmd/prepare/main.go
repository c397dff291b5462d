// Command prepare featurizes the labeled URL list and writes the processed
// Parquet table.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/raysh454/phishscan/internal/app"
	"github.com/raysh454/phishscan/internal/dataset"
	"github.com/raysh454/phishscan/internal/logging"
)

func main() {
	cfg := app.LoadConfig()

	in := flag.String("in", cfg.SampleCSV(), "Labeled url,label input (.csv or .xlsx)")
	out := flag.String("out", cfg.ProcessedParquet(), "Processed Parquet output")
	flag.Parse()

	logger := app.NewLogger(cfg, "prepare")

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := dataset.Process(ctx, *in, *out, asm, cfg.PrepConcurrency, logger); err != nil {
		logger.Error("preparation failed", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}
