package webclient

import (
	"context"
)

// WebClient performs HTTP requests on behalf of the fetcher. Backends differ
// in how the page is obtained (plain net/http vs. a headless browser).
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}
