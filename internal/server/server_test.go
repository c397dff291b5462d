package server_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	_ "modernc.org/sqlite"

	"github.com/raysh454/phishscan/internal/classifier"
	"github.com/raysh454/phishscan/internal/features"
	"github.com/raysh454/phishscan/internal/scanstore"
	"github.com/raysh454/phishscan/internal/scoring"
	"github.com/raysh454/phishscan/internal/server"
	"github.com/raysh454/phishscan/internal/testutil"
)

// stubScorer returns a fixed verdict, or err when set.
type stubScorer struct {
	score float64
	err   error

	mu    sync.Mutex
	calls []string
}

func (s *stubScorer) Predict(_ context.Context, url string) (*scoring.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, url)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &scoring.Result{
		URL:         url,
		Score:       s.score,
		Label:       scoring.Label(s.score),
		Explanation: scoring.Explain(s.score),
		ScoredAt:    time.Now().UTC(),
	}, nil
}

func (s *stubScorer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestServer(t *testing.T, scorer server.Scorer, history server.History) *server.Server {
	t.Helper()
	s, err := server.NewServer(server.Config{ListenAddr: ":0", Logger: &testutil.DummyLogger{}}, scorer, history)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func newStore(t *testing.T) *scanstore.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	st, err := scanstore.New(db, nil)
	if err != nil {
		t.Fatalf("scanstore.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func doJSON(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

// ─── Health / CORS ─────────────────────────────────────────────────────

func TestServer_Health(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &stubScorer{}, nil)

	rec := doJSON(t, s, "GET", "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "healthy" {
		t.Errorf("unexpected body %v", body)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}
}

func TestServer_ScanPreflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &stubScorer{}, nil)
	rec := doJSON(t, s, "OPTIONS", "/scan", "")
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Methods") != "POST" {
		t.Errorf("unexpected preflight response %d %v", rec.Code, rec.Header())
	}
}

// ─── /scan ─────────────────────────────────────────────────────────────

func TestServer_Scan_BadRequests(t *testing.T) {
	t.Parallel()
	scorer := &stubScorer{score: 0.9}
	s := newTestServer(t, scorer, nil)

	cases := []struct {
		name string
		body string
	}{
		{"not a url", `{"url":"not-a-url"}`},
		{"missing body", ``},
		{"malformed json", `{"url":`},
		{"missing url", `{"other":"x"}`},
		{"empty url", `{"url":"  "}`},
		{"no host", `{"url":"https://"}`},
		{"trailing garbage", `{"url":"https://example.com"} trailing-garbage`},
		{"two objects", `{"url":"https://example.com"}{"url":"https://b.example"}`},
	}
	for _, tc := range cases {
		rec := doJSON(t, s, "POST", "/scan", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d (%s)", tc.name, rec.Code, rec.Body.String())
		}
	}
	if scorer.callCount() != 0 {
		t.Errorf("scorer must not run for bad requests, ran %d times", scorer.callCount())
	}
}

func TestServer_Scan_RequiresJSONContentType(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &stubScorer{score: 0.1}, nil)

	req := httptest.NewRequest("POST", "/scan", strings.NewReader(`{"url":"https://example.com"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestServer_Scan_OK(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &stubScorer{score: 0.73}, nil)

	rec := doJSON(t, s, "POST", "/scan", `{"url":"https://example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	decodeJSON(t, rec, &body)
	for _, key := range []string{"url", "score", "label", "explanation"} {
		if _, ok := body[key]; !ok {
			t.Errorf("response missing %q: %v", key, body)
		}
	}
	if body["label"] != "phishing" || body["score"] != 0.73 {
		t.Errorf("unexpected verdict %v", body)
	}
}

func TestServer_Scan_ScoringFailureIs500(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &stubScorer{err: errors.New("load model: model artifact not found")}, nil)

	rec := doJSON(t, s, "POST", "/scan", `{"url":"https://example.com"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body server.ErrorResponse
	decodeJSON(t, rec, &body)
	if !strings.Contains(body.Error, "model") {
		t.Errorf("expected error message to be surfaced, got %q", body.Error)
	}
}

func TestServer_Scan_RealPipelineMissingModel(t *testing.T) {
	t.Parallel()
	loader := classifier.NewLoader(t.TempDir()+"/baseline.json", nil)
	p := scoring.NewPipeline(features.NewAssembler(nil, nil), loader, nil)
	s := newTestServer(t, p, nil)

	rec := doJSON(t, s, "POST", "/scan", `{"url":"https://example.com"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

// ─── /scans ────────────────────────────────────────────────────────────

func TestServer_ScansHistory(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &stubScorer{score: 0.2}, newStore(t))

	for _, u := range []string{"https://a.example/", "https://b.example/", "https://a.example/?utm_source=x"} {
		if rec := doJSON(t, s, "POST", "/scan", `{"url":"`+u+`"}`); rec.Code != http.StatusOK {
			t.Fatalf("scan %s: %d", u, rec.Code)
		}
	}

	rec := doJSON(t, s, "GET", "/scans?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var recs []scanstore.Record
	decodeJSON(t, rec, &recs)
	if len(recs) != 2 {
		t.Errorf("expected 2 records, got %d", len(recs))
	}

	rec = doJSON(t, s, "GET", "/scans?url=https://a.example", "")
	recs = nil
	decodeJSON(t, rec, &recs)
	if len(recs) != 2 {
		t.Errorf("expected 2 scans of a.example, got %d", len(recs))
	}
}

// rejectingHistory fails every URL filter the way the store does for an
// uncanonicalizable URL.
type rejectingHistory struct{}

func (rejectingHistory) Insert(context.Context, *scoring.Result) (*scanstore.Record, error) {
	return nil, errors.New("read only")
}

func (rejectingHistory) List(context.Context, int) ([]scanstore.Record, error) {
	return nil, nil
}

func (rejectingHistory) ListByURL(context.Context, string, int) ([]scanstore.Record, error) {
	return nil, fmt.Errorf("%w %q: %w", scanstore.ErrInvalidURL, "x", errors.New("bad"))
}

func TestServer_ScansRejectsInvalidURLFilter(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &stubScorer{}, newStore(t))
	for _, q := range []string{"not-a-url", "https://", "%20%20"} {
		rec := doJSON(t, s, "GET", "/scans?url="+q, "")
		if q == "%20%20" {
			if rec.Code != http.StatusOK {
				t.Errorf("blank filter: expected 200 (unfiltered), got %d", rec.Code)
			}
			continue
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("url=%s: expected 400, got %d (%s)", q, rec.Code, rec.Body.String())
		}
	}

	s = newTestServer(t, &stubScorer{}, rejectingHistory{})
	if rec := doJSON(t, s, "GET", "/scans?url=https://a.example", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("store-rejected filter: expected 400, got %d", rec.Code)
	}
}

func TestServer_ScansDisabledWithoutHistory(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &stubScorer{}, nil)
	if rec := doJSON(t, s, "GET", "/scans", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

// ─── Swagger ───────────────────────────────────────────────────────────

func TestServer_SwaggerDoc(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &stubScorer{}, nil)
	rec := doJSON(t, s, "GET", "/swagger/doc.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"/scan"`) {
		t.Error("swagger document does not describe /scan")
	}
}

// ─── WebSocket feed ────────────────────────────────────────────────────

func TestServer_ScanFeedBroadcasts(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &stubScorer{score: 0.95}, newStore(t))
	ts := httptest.NewServer(s)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/scans"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Post(ts.URL+"/scan", "application/json", strings.NewReader(`{"url":"http://10.1.2.3/login"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var rec scanstore.Record
	if err := conn.ReadJSON(&rec); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if rec.URL != "http://10.1.2.3/login" || rec.Label != "phishing" || rec.ID == "" {
		t.Errorf("unexpected event %+v", rec)
	}
}
