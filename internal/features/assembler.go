package features

import (
	"context"

	"github.com/raysh454/phishscan/internal/logging"
	"golang.org/x/sync/errgroup"
)

// HTMLFetcher is the network dependency of the assembler
// (satisfied by *fetcher.HTMLFetcher).
type HTMLFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Assembler builds full feature vectors. Lexical extraction always runs;
// fetching and structural extraction run alongside it and degrade to a zero
// Structural block on any failure.
type Assembler struct {
	fetcher HTMLFetcher
	logger  logging.Logger
}

// NewAssembler returns an Assembler. A nil fetcher yields lexical-only
// vectors (structural block always zero).
func NewAssembler(f HTMLFetcher, logger logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Assembler{
		fetcher: f,
		logger:  logger.With(logging.Field{Key: "component", Value: "assembler"}),
	}
}

// Extract returns the 10-value vector for an already-normalized URL. It never
// fails: fetch and parse errors are logged as warnings and replaced by zeros.
func (a *Assembler) Extract(ctx context.Context, url string) Vector {
	var (
		lex Lexical
		st  Structural
		g   errgroup.Group
	)

	g.Go(func() error {
		lex = ExtractURLFeatures(url)
		return nil
	})
	g.Go(func() error {
		st = a.structural(ctx, url)
		return nil
	})
	_ = g.Wait()

	return Combine(lex, st)
}

func (a *Assembler) structural(ctx context.Context, url string) Structural {
	if a.fetcher == nil {
		return Structural{}
	}
	html, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		a.logger.Warn("html fetch failed, using fallback features",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
		return Structural{}
	}
	st, err := ExtractHTMLFeatures(html)
	if err != nil {
		a.logger.Warn("html parse failed, using fallback features",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
		return Structural{}
	}
	return st
}
