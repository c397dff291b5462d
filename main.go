// Command phishscan scores a single URL:
//
//	phishscan --url http://example.com [--json]
//
// Invalid input and scoring failures are logged; nothing is printed and the
// exit status stays 0.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raysh454/phishscan/internal/app"
	"github.com/raysh454/phishscan/internal/cli"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/utils"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "phishscan: %v\nusage: phishscan --url <url> [--json]\n", err)
		os.Exit(2)
	}

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg, "predict")

	if !utils.ValidateURL(args.URL) {
		logger.Error("Invalid URL.", logging.Field{Key: "url", Value: args.URL})
		return
	}

	a, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.Error("startup failed", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer a.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := a.Pipeline.Predict(ctx, args.URL)
	if err != nil {
		logger.Error("Prediction failed", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	if err := cli.PrintResult(os.Stdout, args, res); err != nil {
		logger.Error("writing result", logging.Field{Key: "error", Value: err.Error()})
	}
}
