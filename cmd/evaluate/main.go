// Command evaluate scores the saved model on the held-out split of the
// processed dataset. It never falls back to synthetic data.
package main

import (
	"fmt"
	"os"

	"github.com/raysh454/phishscan/internal/app"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/training"
)

func main() {
	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg, "evaluate")

	m, err := training.Evaluate(training.Options{
		ProcessedPath: cfg.ProcessedParquet(),
		ModelPath:     cfg.ModelPath(),
	}, logger)
	if err != nil {
		logger.Error("Missing or unreadable artifacts; run train first",
			logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	fmt.Print(m.Report())
}
