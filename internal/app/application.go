package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/raysh454/phishscan/internal/classifier"
	"github.com/raysh454/phishscan/internal/features"
	"github.com/raysh454/phishscan/internal/fetcher"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/scanstore"
	"github.com/raysh454/phishscan/internal/scoring"
	"github.com/raysh454/phishscan/internal/webclient"
)

// Application is the global runtime state container. It owns the scoring
// stack built from Config and the resources that need closing. Pass it into
// entry points rather than using package-level variables.
type Application struct {
	Config *Config
	Logger logging.Logger

	WebClient webclient.WebClient
	Fetcher   *fetcher.HTMLFetcher
	Assembler *features.Assembler
	Models    *classifier.Loader
	Pipeline  *scoring.Pipeline

	// History is nil until OpenHistory succeeds or when disabled.
	History *scanstore.Store
}

// NewLogger builds the process logger at cfg's level.
func NewLogger(cfg *Config, component string) logging.Logger {
	return logging.NewWriterLogger(os.Stdout, component, logging.ParseLevel(cfg.LogLevel))
}

// NewApplication wires webclient -> fetcher -> assembler -> pipeline. The
// model is not read until the first prediction.
func NewApplication(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = NewLogger(cfg, "phishscan")
	}

	wcCfg := cfg.WebClientCfg
	if wcCfg.Timeout <= 0 {
		wcCfg.Timeout = cfg.FetchTimeout
	}
	wc, err := webclient.NewWebClient(wcCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating webclient: %w", err)
	}

	f, err := fetcher.New(wc, fetcher.Config{Timeout: cfg.FetchTimeout}, logger)
	if err != nil {
		wc.Close()
		return nil, fmt.Errorf("creating fetcher: %w", err)
	}

	asm := features.NewAssembler(f, logger)
	models := classifier.NewLoader(cfg.ModelPath(), logger)

	return &Application{
		Config:    cfg,
		Logger:    logger,
		WebClient: wc,
		Fetcher:   f,
		Assembler: asm,
		Models:    models,
		Pipeline:  scoring.NewPipeline(asm, models, logger),
	}, nil
}

// PrepAssembler returns an assembler whose fetches are paced by PrepRate,
// for bulk featurizing during data preparation.
func (a *Application) PrepAssembler() (*features.Assembler, error) {
	f, err := fetcher.New(a.WebClient, fetcher.Config{
		Timeout:       a.Config.FetchTimeout,
		RatePerSecond: a.Config.PrepRate,
		Burst:         a.Config.PrepConcurrency,
	}, a.Logger)
	if err != nil {
		return nil, err
	}
	return features.NewAssembler(f, a.Logger), nil
}

// OpenHistory opens the scan store at ScanDBPath. An empty path leaves
// History nil.
func (a *Application) OpenHistory() error {
	if a.Config.ScanDBPath == "" {
		a.Logger.Info("scan history disabled")
		return nil
	}
	st, err := scanstore.Open(a.Config.ScanDBPath, a.Logger)
	if err != nil {
		return fmt.Errorf("opening scan history: %w", err)
	}
	a.History = st
	return nil
}

// Shutdown releases the webclient and the scan store.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	var errs []error
	if a.History != nil {
		errs = append(errs, a.History.Close())
	}
	if a.WebClient != nil {
		errs = append(errs, a.WebClient.Close())
	}
	return errors.Join(errs...)
}
