// Package scanstore keeps a SQLite history of scored URLs.
package scanstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/phishscan/internal/features"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/scoring"
	"github.com/raysh454/phishscan/internal/utils"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

var (
	ErrNilResult = errors.New("nil scan result")
	// ErrInvalidURL is returned when a URL filter cannot be canonicalized.
	ErrInvalidURL = errors.New("invalid url filter")
)

// Record is one stored scan.
type Record struct {
	ID           string          `json:"id"`
	URL          string          `json:"url"`
	CanonicalURL string          `json:"canonical_url"`
	Score        float64         `json:"score"`
	Label        string          `json:"label"`
	Explanation  string          `json:"explanation"`
	Features     features.Vector `json:"features"`
	ScannedAt    time.Time       `json:"scanned_at"`
}

// Store is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if needed) the database at path.
func Open(path string, logger logging.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create scan db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s, err := New(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New applies the schema to db and wraps it. The Store takes ownership of db.
func New(db *sql.DB, logger logging.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if err := applySchema(db); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db, logger: logger.With(logging.Field{Key: "component", Value: "scanstore"})}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Insert records res and returns the stored row.
func (s *Store) Insert(ctx context.Context, res *scoring.Result) (*Record, error) {
	if res == nil {
		return nil, ErrNilResult
	}
	canonical, err := utils.Canonicalize(res.URL)
	if err != nil {
		canonical = res.URL
	}
	featJSON, err := json.Marshal(res.Features)
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}
	at := res.ScoredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	rec := &Record{
		ID:           uuid.New().String(),
		URL:          res.URL,
		CanonicalURL: canonical,
		Score:        res.Score,
		Label:        res.Label,
		Explanation:  res.Explanation,
		Features:     res.Features,
		ScannedAt:    at.UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scans (id, url, canonical_url, score, label, explanation, features_json, scanned_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.URL, rec.CanonicalURL, rec.Score, rec.Label, rec.Explanation, string(featJSON), rec.ScannedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("insert scan: %w", err)
	}
	s.logger.Debug("scan recorded", logging.Field{Key: "id", Value: rec.ID}, logging.Field{Key: "url", Value: rec.URL})
	return rec, nil
}

// List returns up to limit scans, newest first. limit <= 0 selects
// DefaultListLimit; values above MaxListLimit are capped.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	return s.query(ctx,
		`SELECT id, url, canonical_url, score, label, explanation, features_json, scanned_at
		 FROM scans ORDER BY scanned_at DESC, id LIMIT ?`, clampLimit(limit))
}

// ListByURL returns past scans of the same canonical URL, newest first.
func (s *Store) ListByURL(ctx context.Context, rawURL string, limit int) ([]Record, error) {
	canonical, err := utils.Canonicalize(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidURL, rawURL, err)
	}
	return s.query(ctx,
		`SELECT id, url, canonical_url, score, label, explanation, features_json, scanned_at
		 FROM scans WHERE canonical_url = ? ORDER BY scanned_at DESC, id LIMIT ?`, canonical, clampLimit(limit))
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r        Record
			featJSON string
			at       int64
		)
		if err := rows.Scan(&r.ID, &r.URL, &r.CanonicalURL, &r.Score, &r.Label, &r.Explanation, &featJSON, &at); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(featJSON), &r.Features); err != nil {
			return nil, fmt.Errorf("decode features for %s: %w", r.ID, err)
		}
		r.ScannedAt = time.Unix(0, at).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}

func (s *Store) Close() error {
	return s.db.Close()
}
