package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/raysh454/phishscan/internal/webclient"
)

// Config is the process-wide runtime configuration. It is built once at
// startup (LoadConfig) and passed by pointer; nothing mutates it afterwards.
type Config struct {
	// DataDir holds the training CSV, the processed Parquet file and the scan DB.
	DataDir string

	// ModelsDir holds the model artifact.
	ModelsDir string

	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string

	// Debug enables verbose server behaviour (request body logging).
	Debug bool

	// ListenAddr is the HTTP listen address for the scan API.
	ListenAddr string

	// FetchTimeout bounds the single HTML GET made per scored URL.
	FetchTimeout time.Duration

	// WebClient configuration (fetch backend).
	WebClientCfg webclient.Config

	// ScanDBPath is the SQLite file for scan history. Empty disables history.
	ScanDBPath string

	// PrepConcurrency and PrepRate bound page fetches during data preparation.
	PrepConcurrency int
	PrepRate        float64
}

// DefaultConfig returns a Config populated with development defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:      "data",
		ModelsDir:    "models",
		LogLevel:     "INFO",
		Debug:        true,
		ListenAddr:   ":5000",
		FetchTimeout: 10 * time.Second,
		WebClientCfg: webclient.Config{
			Client: webclient.ClientNetHTTP,
		},
		ScanDBPath:      filepath.Join("data", "scans.db"),
		PrepConcurrency: 4,
		PrepRate:        5,
	}
}

// LoadConfig reads an optional .env file, then overlays recognised
// environment variables on DefaultConfig. Unset or unparsable values keep
// their defaults.
func LoadConfig() *Config {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function (os.LookupEnv in production).
func FromEnv(lookup func(string) (string, bool)) *Config {
	cfg := DefaultConfig()
	dataDirSet := false

	if v, ok := lookup("DATA_DIR"); ok && v != "" {
		cfg.DataDir = v
		dataDirSet = true
	}
	if v, ok := lookup("MODELS_DIR"); ok && v != "" {
		cfg.ModelsDir = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = strings.ToUpper(v)
	}
	if v, ok := lookup("SERVER_DEBUG"); ok && v != "" {
		cfg.Debug = strings.EqualFold(v, "true")
	}
	if v, ok := lookup("LISTEN_ADDR"); ok && v != "" {
		cfg.ListenAddr = v
	}
	if v, ok := lookup("FETCH_TIMEOUT"); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.FetchTimeout = d
		}
	}
	if v, ok := lookup("FETCH_BACKEND"); ok && v != "" {
		cfg.WebClientCfg.Client = webclient.Client(strings.ToLower(v))
	}
	if v, ok := lookup("SCAN_DB"); ok {
		cfg.ScanDBPath = v
	} else if dataDirSet {
		cfg.ScanDBPath = filepath.Join(cfg.DataDir, "scans.db")
	}
	if v, ok := lookup("PREP_CONCURRENCY"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PrepConcurrency = n
		}
	}
	if v, ok := lookup("PREP_RATE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.PrepRate = f
		}
	}
	return cfg
}

// SampleCSV is the default training input.
func (c *Config) SampleCSV() string {
	return filepath.Join(c.DataDir, "sample_urls.csv")
}

// ProcessedParquet is the processed-feature artifact.
func (c *Config) ProcessedParquet() string {
	return filepath.Join(c.DataDir, "processed.parquet")
}

// ModelPath is the model artifact produced by training.
func (c *Config) ModelPath() string {
	return filepath.Join(c.ModelsDir, "baseline.json")
}
