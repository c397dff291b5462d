package demoserver

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
)

// DemoServer serves the phishing lab: fixture pages with known structural
// features, a catalog, and a labeled URL list for training demos.
type DemoServer struct {
	cfg   Config
	pages map[string]Page
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config) *DemoServer {
	pageMap := make(map[string]Page)
	for _, p := range GetAllPages() {
		pageMap[p.Path] = p
	}
	return &DemoServer{cfg: cfg, pages: pageMap}
}

// Handler returns the lab's routes.
func (s *DemoServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.pageHandler)
	mux.HandleFunc("/lab/control", s.controlPanelHandler)
	mux.HandleFunc("/lab/catalog.json", s.catalogHandler)
	mux.HandleFunc("/lab/urls.csv", s.urlsHandler)
	mux.HandleFunc("/static/", s.staticHandler)
	return mux
}

// Start starts the demo server.
func (s *DemoServer) Start() error {
	fmt.Printf("Phishing lab starting on %s\n", s.cfg.BaseURL())
	fmt.Printf("Control panel at %s/lab/control\n", s.cfg.BaseURL())
	return http.ListenAndServe(s.cfg.Addr(), s.Handler())
}

// paths returns page paths in a stable order.
func (s *DemoServer) paths() []string {
	out := make([]string, 0, len(s.pages))
	for p := range s.pages {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (s *DemoServer) pageHandler(w http.ResponseWriter, r *http.Request) {
	page, ok := s.pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	contentType := page.ContentType
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(page.status())
	_, _ = w.Write([]byte(page.HTML))
}

// staticHandler serves placeholder static files.
func (s *DemoServer) staticHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	_, _ = w.Write([]byte(`// Lab static file: ` + r.URL.Path + "\n"))
}

type catalogEntry struct {
	Path        string    `json:"path"`
	Description string    `json:"description"`
	Label       int       `json:"label"`
	Status      int       `json:"status"`
	Expected    []float64 `json:"expected_structural"`
}

func (s *DemoServer) catalog() []catalogEntry {
	out := make([]catalogEntry, 0, len(s.pages))
	for _, path := range s.paths() {
		p := s.pages[path]
		out = append(out, catalogEntry{
			Path:        p.Path,
			Description: p.Description,
			Label:       p.Label,
			Status:      p.status(),
			Expected:    p.Expected[:],
		})
	}
	return out
}

func (s *DemoServer) catalogHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.catalog())
}

// urlsHandler emits a url,label CSV of every servable page, addressed
// through the host the client used.
func (s *DemoServer) urlsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"url", "label"})
	for _, path := range s.paths() {
		p := s.pages[path]
		if p.status() != http.StatusOK {
			continue
		}
		_ = cw.Write([]string{"http://" + r.Host + p.Path, strconv.Itoa(p.Label)})
	}
	cw.Flush()
}

// controlPanelHandler lists the fixtures with their expected features.
func (s *DemoServer) controlPanelHandler(w http.ResponseWriter, r *http.Request) {
	tmpl := template.Must(template.New("control").Parse(controlPanelHTML))
	data := struct {
		Pages   []catalogEntry
		BaseURL string
	}{
		Pages:   s.catalog(),
		BaseURL: s.cfg.BaseURL(),
	}
	w.Header().Set("Content-Type", "text/html")
	_ = tmpl.Execute(w, data)
}

const controlPanelHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Phishing Lab</title>
    <style>
        body { font-family: system-ui, -apple-system, sans-serif; max-width: 1200px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        h1 { color: #333; border-bottom: 2px solid #007bff; padding-bottom: 10px; }
        .page-card { background: white; border-radius: 8px; padding: 20px; margin: 15px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .page-path { font-size: 1.2em; font-weight: bold; color: #007bff; text-decoration: none; }
        .page-desc { color: #666; margin: 5px 0; }
        .phish { color: #dc3545; font-weight: bold; }
        .legit { color: #28a745; font-weight: bold; }
        .info-box { background: #e7f3ff; padding: 15px; border-radius: 8px; margin-bottom: 20px; border-left: 4px solid #007bff; }
    </style>
</head>
<body>
    <h1>Phishing Lab</h1>

    <div class="info-box">
        <strong>How to use:</strong> scan these pages with phishscan and compare the
        structural features with the expected values below. A labeled list is at
        <a href="/lab/urls.csv">/lab/urls.csv</a>.
        <pre>phishscan --url {{.BaseURL}}/login</pre>
    </div>

    {{range .Pages}}
    <div class="page-card">
        <a href="{{.Path}}" target="_blank" class="page-path">{{.Path}}</a>
        {{if eq .Label 1}}<span class="phish">phishing</span>{{else}}<span class="legit">legit</span>{{end}}
        <span>HTTP {{.Status}}</span>
        <div class="page-desc">{{.Description}}</div>
        <div>forms, password inputs, iframes, external links, remote script: {{.Expected}}</div>
    </div>
    {{end}}
</body>
</html>`
