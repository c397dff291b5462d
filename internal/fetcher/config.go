package fetcher

import "time"

// DefaultTimeout bounds the single GET made for a scored URL.
const DefaultTimeout = 10 * time.Second

type Config struct {
	// Timeout for one fetch, including body read. Zero means DefaultTimeout.
	Timeout time.Duration

	// RatePerSecond throttles fetches when positive (data preparation).
	RatePerSecond float64

	// Burst is the limiter burst size; zero means 1.
	Burst int
}
