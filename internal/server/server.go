package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/raysh454/phishscan/docs/swagger" // registers the OpenAPI document
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/scanstore"
	"github.com/raysh454/phishscan/internal/scoring"
	"github.com/raysh454/phishscan/internal/utils"
)

// maxBodyBytes bounds POST /scan bodies.
const maxBodyBytes = 64 << 10

// Scorer is the scoring entry point (satisfied by *scoring.Pipeline).
type Scorer interface {
	Predict(ctx context.Context, url string) (*scoring.Result, error)
}

// History persists and lists scans (satisfied by *scanstore.Store).
type History interface {
	Insert(ctx context.Context, res *scoring.Result) (*scanstore.Record, error)
	List(ctx context.Context, limit int) ([]scanstore.Record, error)
	ListByURL(ctx context.Context, url string, limit int) ([]scanstore.Record, error)
}

// Server is the HTTP + WebSocket API surface for phishscan.
type Server struct {
	cfg      Config
	scorer   Scorer
	history  History
	router   chi.Router
	upgrader websocket.Upgrader
	hub      *hub
	logger   logging.Logger
}

// NewServer wires the routes. history may be nil, which disables /scans.
func NewServer(cfg Config, scorer Scorer, history History) (*Server, error) {
	if scorer == nil {
		return nil, fmt.Errorf("scorer is nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	s := &Server{
		cfg:     cfg,
		scorer:  scorer,
		history: history,
		router:  chi.NewRouter(),
		hub:     newHub(),
		logger:  logger.With(logging.Field{Key: "component", Value: "server"}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Options("/scan", s.optionsHandler("POST"))
	r.Options("/scans", s.optionsHandler("GET"))

	r.Get("/", s.handleHealth)
	r.Post("/scan", s.handleScan)
	r.Get("/scans", s.handleListScans)
	r.Get("/ws/scans", s.handleScansWS)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if s.cfg.Debug && r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes)); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close disconnects websocket subscribers.
func (s *Server) Close() {
	s.hub.closeAll()
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket streams
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decodeJSONBody decodes exactly one JSON value from body into v. Trailing
// data after the value is an error.
func decodeJSONBody(body io.Reader, v any) error {
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return fmt.Errorf("trailing data after JSON body: %w", err)
	}
	return nil
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// --- HTTP handlers ---

// handleHealth godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router / [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// handleScan godoc
// @Summary Score a URL
// @Description Fetches the page once, extracts features and returns the phishing probability.
// @Tags scan
// @Accept json
// @Produce json
// @Param request body ScanRequest true "URL to scan"
// @Success 200 {object} ScanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /scan [post]
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		writeError(w, http.StatusBadRequest, "JSON required")
		return
	}
	var body ScanRequest
	if err := decodeJSONBody(r.Body, &body); err != nil {
		s.logger.Warn("decoding scan body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, "JSON required")
		return
	}
	target := strings.TrimSpace(body.URL)
	if !utils.ValidateURL(target) {
		writeError(w, http.StatusBadRequest, "Valid 'url' required")
		return
	}

	res, err := s.scorer.Predict(r.Context(), target)
	if errors.Is(err, scoring.ErrInvalidURL) {
		writeError(w, http.StatusBadRequest, "Valid 'url' required")
		return
	}
	if err != nil {
		s.logger.Error("scan failed",
			logging.Field{Key: "url", Value: target},
			logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.record(r.Context(), res)

	writeJSON(w, http.StatusOK, ScanResponse{
		URL:         res.URL,
		Score:       res.Score,
		Label:       res.Label,
		Explanation: res.Explanation,
	})
}

// record stores res and notifies websocket subscribers. History failures
// never fail the scan.
func (s *Server) record(ctx context.Context, res *scoring.Result) {
	var event any = res
	if s.history != nil {
		rec, err := s.history.Insert(ctx, res)
		if err != nil {
			s.logger.Warn("recording scan", logging.Field{Key: "error", Value: err.Error()})
		} else {
			event = rec
		}
	}
	s.hub.broadcast(event)
}

// handleListScans godoc
// @Summary Recent scans
// @Tags scan
// @Produce json
// @Param limit query int false "Maximum rows (default 50, max 500)"
// @Param url query string false "Only scans of this URL (canonical match)"
// @Success 200 {array} scanstore.Record
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /scans [get]
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "scan history disabled")
		return
	}
	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	var (
		recs []scanstore.Record
		err  error
	)
	if u := strings.TrimSpace(r.URL.Query().Get("url")); u != "" {
		if !utils.ValidateURL(u) {
			writeError(w, http.StatusBadRequest, "Valid 'url' required")
			return
		}
		recs, err = s.history.ListByURL(r.Context(), u, limit)
	} else {
		recs, err = s.history.List(r.Context(), limit)
	}
	if errors.Is(err, scanstore.ErrInvalidURL) {
		writeError(w, http.StatusBadRequest, "Valid 'url' required")
		return
	}
	if err != nil {
		s.logger.Warn("listing scans", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []scanstore.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleScansWS streams every completed scan to the client until it
// disconnects.
func (s *Server) handleScansWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	events := s.hub.subscribe()
	defer s.hub.unsubscribe(events)

	// The read loop only notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.logger.Info("scan feed subscriber connected")
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

// Subscribers reports how many websocket clients are attached.
func (s *Server) Subscribers() int {
	return s.hub.count()
}
