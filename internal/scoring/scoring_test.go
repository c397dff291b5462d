package scoring_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raysh454/phishscan/internal/classifier"
	"github.com/raysh454/phishscan/internal/features"
	"github.com/raysh454/phishscan/internal/fetcher"
	"github.com/raysh454/phishscan/internal/scoring"
	"github.com/raysh454/phishscan/internal/testutil"
)

func pipeline(m classifier.Model, html string) *scoring.Pipeline {
	asm := features.NewAssembler(testutil.StubFetcher{HTML: html}, nil)
	return scoring.NewPipeline(asm, classifier.NewStaticLoader(m), nil)
}

func TestLabel_Threshold(t *testing.T) {
	t.Parallel()
	cases := []struct {
		score float64
		want  string
	}{
		{0, "legit"},
		{0.49999, "legit"},
		{0.5, "phishing"},
		{0.51, "phishing"},
		{1, "phishing"},
	}
	for _, tc := range cases {
		if got := scoring.Label(tc.score); got != tc.want {
			t.Errorf("Label(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestExplain_Template(t *testing.T) {
	t.Parallel()
	want := "Phishing score: 0.73. Based on URL/HTML features (e.g., length, forms)."
	if got := scoring.Explain(0.734); got != want {
		t.Errorf("Explain = %q, want %q", got, want)
	}
}

func TestPredict_NormalizesAndScores(t *testing.T) {
	t.Parallel()
	m := &testutil.StubModel{P: 0.8}
	res, err := pipeline(m, "<form></form>").Predict(context.Background(), "  example.com/login ")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if res.URL != "https://example.com/login" {
		t.Errorf("URL = %q", res.URL)
	}
	if res.Label != "phishing" || res.Score != 0.8 {
		t.Errorf("unexpected result %+v", res)
	}
	if !strings.Contains(res.Explanation, "0.80") {
		t.Errorf("explanation %q does not carry score", res.Explanation)
	}
	if len(m.Seen) != 1 || m.Seen[0][3] != 1 || m.Seen[0][5] != 1 {
		t.Errorf("model saw unexpected vector %v", m.Seen)
	}
}

func TestPredict_ClampsModelOutput(t *testing.T) {
	t.Parallel()
	res, err := pipeline(&testutil.StubModel{P: 1.7}, "").Predict(context.Background(), "https://a.example")
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 1 {
		t.Errorf("score = %v, want clamped to 1", res.Score)
	}
}

func TestPredict_InvalidURL(t *testing.T) {
	t.Parallel()
	m := &testutil.StubModel{P: 0.9}
	for _, in := range []string{"", "   ", "https://", "http:///path"} {
		_, err := pipeline(m, "").Predict(context.Background(), in)
		if !errors.Is(err, scoring.ErrInvalidURL) {
			t.Errorf("Predict(%q) error = %v, want ErrInvalidURL", in, err)
		}
	}
	if len(m.Seen) != 0 {
		t.Error("model must not be called for invalid input")
	}
}

func TestPredict_MissingModel(t *testing.T) {
	t.Parallel()
	loader := classifier.NewLoader(filepath.Join(t.TempDir(), "baseline.json"), nil)
	p := scoring.NewPipeline(features.NewAssembler(nil, nil), loader, nil)

	_, err := p.Predict(context.Background(), "https://example.com")
	if !errors.Is(err, classifier.ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestPredict_FetchFailureStillScores(t *testing.T) {
	t.Parallel()
	asm := features.NewAssembler(testutil.StubFetcher{Err: testutil.ErrDummyFetch}, nil)
	m := &testutil.StubModel{Fn: func(v features.Vector) float64 {
		if v[5] != 0 || v[9] != 0 {
			return 1
		}
		return 0.2
	}}
	res, err := scoring.NewPipeline(asm, classifier.NewStaticLoader(m), nil).
		Predict(context.Background(), "http://10.0.0.1/login")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if res.Label != "legit" || res.Score != 0.2 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPredict_ConcurrentCallersShareModel(t *testing.T) {
	t.Parallel()
	m := &testutil.StubModel{P: 0.5}
	p := pipeline(m, "")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Predict(context.Background(), "example.org"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if len(m.Seen) != 16 {
		t.Errorf("expected 16 scorings, got %d", len(m.Seen))
	}
}

func TestPredict_CancelledDuringFetchIsAnError(t *testing.T) {
	t.Parallel()
	const target = "https://login.example.com/"
	wc := &testutil.DummyWebClient{
		ResponseDelay: 50 * time.Millisecond,
		Pages:         map[string]string{target: "<form></form><form></form>"},
	}
	f, err := fetcher.New(wc, fetcher.Config{}, nil)
	if err != nil {
		t.Fatalf("fetcher.New: %v", err)
	}
	m := &testutil.StubModel{Fn: func(v features.Vector) float64 { return v[5] / 2 }}
	p := scoring.NewPipeline(features.NewAssembler(f, nil), classifier.NewStaticLoader(m), nil)

	res, err := p.Predict(context.Background(), target)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if res.Label != "phishing" || res.Features[5] != 2 {
		t.Fatalf("live context: unexpected result %+v", res)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res, err = p.Predict(ctx, target)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got result %+v err %v", res, err)
	}
	if res != nil {
		t.Errorf("expected no result, got %+v", res)
	}

	cancelled, stop := context.WithCancel(context.Background())
	stop()
	if _, err := p.Predict(cancelled, target); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(m.Seen) != 1 {
		t.Errorf("model must only score the live call, scored %d", len(m.Seen))
	}
}
