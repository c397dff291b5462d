package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 5 << 20

// Config is the minimal set of options required for constructing a WebClient.
// app.Config embeds it without creating an import cycle.
type Config struct {
	Client Client

	// Timeout bounds a whole request. Zero means 30s.
	Timeout time.Duration

	// UserAgent is sent when the request carries none.
	UserAgent string

	// MaxBodyBytes caps the body read; zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// IdleAfter is how long chromedp waits for network quiet before
	// snapshotting the DOM. Zero means 2s.
	IdleAfter time.Duration

	// ShowBrowser runs chromedp with a visible window (debugging only).
	ShowBrowser bool
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 30 * time.Second
}

func (c Config) maxBody() int64 {
	if c.MaxBodyBytes > 0 {
		return c.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}

func (c Config) idleAfter() time.Duration {
	if c.IdleAfter > 0 {
		return c.IdleAfter
	}
	return 2 * time.Second
}
