package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/webclient"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// ErrBadStatus is returned when the page answers with a non-2xx status.
var ErrBadStatus = errors.New("non-success status")

// Module: fetcher
// HTMLFetcher performs the single bounded GET that feeds the structural
// feature extractor. It is the only network boundary in the scoring path.
type HTMLFetcher struct {
	wc      webclient.WebClient
	cfg     Config
	limiter *rate.Limiter
	logger  logging.Logger
}

// New creates an HTMLFetcher over the given webclient.
func New(wc webclient.WebClient, cfg Config, logger logging.Logger) (*HTMLFetcher, error) {
	if wc == nil {
		return nil, fmt.Errorf("fetcher: webclient is nil")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	f := &HTMLFetcher{
		wc:     wc,
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return f, nil
}

// Fetch GETs pageURL and returns its body decoded to UTF-8. Transport
// failures, timeouts and non-2xx answers are errors.
func (f *HTMLFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("fetch %s: rate limit: %w", pageURL, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	resp, err := f.wc.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("fetch %s: %w: %d", pageURL, ErrBadStatus, resp.StatusCode)
	}

	f.logger.Debug("fetched page",
		logging.Field{Key: "url", Value: pageURL},
		logging.Field{Key: "status", Value: resp.StatusCode},
		logging.Field{Key: "media_type", Value: resp.MediaType()},
		logging.Field{Key: "size_bytes", Value: len(resp.Body)})

	return decodeBody(resp.Body, resp.ContentType()), nil
}

// decodeBody converts body to UTF-8 using the declared or sniffed charset.
// Undecodable bodies are returned as-is.
func decodeBody(body []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
