package features_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raysh454/phishscan/internal/features"
	"github.com/raysh454/phishscan/internal/fetcher"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/testutil"
	"github.com/raysh454/phishscan/internal/webclient"
)

func TestExtractURLFeatures_Basic(t *testing.T) {
	t.Parallel()
	url := "https://example.com"
	f := features.ExtractURLFeatures(url)

	if len(f) != 5 {
		t.Fatalf("expected 5 lexical features, got %d", len(f))
	}
	if f[0] != float64(len(url)) {
		t.Errorf("url_length = %v, want %d", f[0], len(url))
	}
	if f[3] != 1 {
		t.Errorf("is_https = %v, want 1", f[3])
	}
}

func TestExtractURLFeatures_Table(t *testing.T) {
	t.Parallel()
	cases := []struct {
		url  string
		want features.Lexical
	}{
		{"http://paypal.com.secure-login.example@10.0.0.1/", features.Lexical{48, 6, 1, 0, 1}},
		{"https://192.168.1.1:8443/login", features.Lexical{30, 3, 0, 1, 1}},
		{"https://[2001:db8::1]/", features.Lexical{22, 0, 0, 1, 0}},
		{"https://[1::2]/", features.Lexical{15, 0, 0, 1, 1}},
		{"http://a.b.c.d", features.Lexical{14, 3, 0, 0, 0}},
		{"https://bücher.example", features.Lexical{22, 1, 0, 1, 0}},
	}
	for _, tc := range cases {
		if got := features.ExtractURLFeatures(tc.url); got != tc.want {
			t.Errorf("ExtractURLFeatures(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestExtractURLFeatures_UnparseableStillCountsCharacters(t *testing.T) {
	t.Parallel()
	f := features.ExtractURLFeatures("http://[bad.host@x")
	if f[0] != 18 || f[1] != 1 || f[2] != 1 {
		t.Errorf("unexpected string features %v", f)
	}
	if f[3] != 0 || f[4] != 0 {
		t.Errorf("expected parse-dependent features to be zero, got %v", f)
	}
}

func TestExtractHTMLFeatures_AllSignals(t *testing.T) {
	t.Parallel()
	html := "<html><form><input type='password'></input></form>" +
		"<iframe></iframe><a href='http://external.com'>Link</a>" +
		"<script src='http://external.js'></script></html>"

	got, err := features.ExtractHTMLFeatures(html)
	if err != nil {
		t.Fatalf("ExtractHTMLFeatures: %v", err)
	}
	want := features.Structural{1, 1, 1, 1, 1}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractHTMLFeatures_Rules(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		html string
		want features.Structural
	}{
		{"empty", "", features.Structural{}},
		{
			"password type is case sensitive",
			`<input type="password"><input type="Password"><input type="text"><input>`,
			features.Structural{0, 1, 0, 0, 0},
		},
		{
			"base href excludes same-site links",
			`<head><base href="https://bank.example/"></head>
			 <a href="https://bank.example/login">in</a>
			 <a href="https://evil.example/">out</a>
			 <a href="/relative">rel</a>
			 <a>no href</a>`,
			features.Structural{0, 0, 0, 1, 0},
		},
		{
			"no base counts every http link",
			`<a href="http://a.example">a</a><a href="https://b.example">b</a><a href="#top">c</a>`,
			features.Structural{0, 0, 0, 2, 0},
		},
		{
			"relative and inline scripts are not suspicious",
			`<script src="/app.js"></script><script>var x = 1;</script>`,
			features.Structural{},
		},
		{
			"malformed markup is tolerated",
			`<form><form><iframe src=x><div><input type=password <script src="https://cdn.evil/x.js"`,
			features.Structural{1, 0, 1, 0, 0},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := features.ExtractHTMLFeatures(tc.html)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAssembler_UsesFetchedHTML(t *testing.T) {
	t.Parallel()
	a := features.NewAssembler(testutil.StubFetcher{HTML: "<html><form></form></html>"}, nil)

	v := a.Extract(context.Background(), "https://example.com")
	if len(v) != 10 {
		t.Fatalf("expected 10 features, got %d", len(v))
	}
	if v[0] <= 0 {
		t.Errorf("expected positive url length, got %v", v[0])
	}
	if v[5] != 1 {
		t.Errorf("expected one form, got %v", v[5])
	}
}

func TestAssembler_FetchFailureZeroFillsStructural(t *testing.T) {
	t.Parallel()
	logger := &testutil.DummyLogger{}
	a := features.NewAssembler(testutil.StubFetcher{Err: errors.New("boom")}, logger)

	v := a.Extract(context.Background(), "https://example.com")
	for i := features.NumLexical; i < features.NumFeatures; i++ {
		if v[i] != 0 {
			t.Errorf("feature %d = %v, want 0", i+1, v[i])
		}
	}
	if v[3] != 1 {
		t.Errorf("lexical features must survive fetch failure, got %v", v)
	}
	if logger.WarnCount() != 1 {
		t.Errorf("expected one warning, got %d", logger.WarnCount())
	}
}

func TestAssembler_UnreachableHostStillReturnsTenValues(t *testing.T) {
	t.Parallel()
	wc, _ := webclient.NewNetHTTPClient(webclient.Config{}, logging.NopLogger{}, nil)
	f, _ := fetcher.New(wc, fetcher.Config{Timeout: 2 * time.Second}, nil)
	a := features.NewAssembler(f, nil)

	// Port 1 on loopback refuses connections.
	v := a.Extract(context.Background(), "http://127.0.0.1:1/login")
	if len(v.Slice()) != 10 {
		t.Fatalf("expected 10 values, got %d", len(v.Slice()))
	}
	for i := 5; i < 10; i++ {
		if v[i] != 0.0 {
			t.Errorf("feature %d = %v, want 0.0", i+1, v[i])
		}
	}
	if v[4] != 1 {
		t.Errorf("expected IP host flag, got %v", v[4])
	}
}

func TestAssembler_NilFetcherIsLexicalOnly(t *testing.T) {
	t.Parallel()
	v := features.NewAssembler(nil, nil).Extract(context.Background(), "http://x.example")
	if v[0] != 16 || v[5] != 0 {
		t.Errorf("unexpected vector %v", v)
	}
}

func TestVectorHelpers(t *testing.T) {
	t.Parallel()
	v := features.Combine(features.Lexical{1, 2, 3, 4, 5}, features.Structural{6, 7, 8, 9, 10})
	if v[0] != 1 || v[9] != 10 {
		t.Errorf("unexpected layout %v", v)
	}
	if v.Map()["iframe_count"] != 8 {
		t.Errorf("Map mislabels features: %v", v.Map())
	}
	if features.ColumnName(0) != "feature_1" || features.ColumnName(9) != "feature_10" {
		t.Error("unexpected column names")
	}
	if _, err := features.FromSlice([]float64{1, 2}); err == nil {
		t.Error("expected error for short slice")
	}
	back, err := features.FromSlice(v.Slice())
	if err != nil || back != v {
		t.Errorf("FromSlice(Slice()) = %v, %v", back, err)
	}
}
