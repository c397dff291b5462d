// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/phishscan/internal/features"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of warnings recorded so far.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ErrorCount returns the number of errors recorded so far.
func (l *DummyLogger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Errors)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// By default it returns Body (or "ok:<url>") with status 200.
// Set FailURLs[url] = true to force an error for a specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	FailURLs      map[string]bool
	Pages         map[string]string
	StatusCode    int
	Headers       http.Header

	mu       sync.Mutex
	Requests []*webclient.Request
}

var ErrDummyFetch = errors.New("dummy fetch fail")

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, ErrDummyFetch
	}

	body := "ok:" + req.URL
	if page, ok := d.Pages[req.URL]; ok {
		body = page
	}
	status := d.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	return &webclient.Response{
		Request:    req,
		Body:       []byte(body),
		Headers:    d.Headers,
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestCount returns how many requests were served.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ─── Model ─────────────────────────────────────────────────────────────

// StubModel implements classifier.Model with a fixed probability, or a
// function of the vector when Fn is set.
type StubModel struct {
	P  float64
	Fn func(features.Vector) float64

	mu   sync.Mutex
	Seen []features.Vector
}

func (m *StubModel) Probability(v features.Vector) float64 {
	m.mu.Lock()
	m.Seen = append(m.Seen, v)
	m.mu.Unlock()
	if m.Fn != nil {
		return m.Fn(v)
	}
	return m.P
}

// StubFetcher implements features.HTMLFetcher.
type StubFetcher struct {
	HTML string
	Err  error
}

func (s StubFetcher) Fetch(context.Context, string) (string, error) {
	return s.HTML, s.Err
}
