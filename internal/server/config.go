package server

import "github.com/raysh454/phishscan/internal/logging"

type Config struct {
	// ListenAddr is the HTTP listen address for the scan API.
	ListenAddr string

	// Debug logs request bodies.
	Debug bool

	Logger logging.Logger
}
