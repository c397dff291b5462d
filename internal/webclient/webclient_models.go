package webclient

import (
	"mime"
	"net/http"
	"strings"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// Response is a fetched page. Body may be truncated at Config.MaxBodyBytes.
type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// ContentType returns the raw Content-Type header.
func (r *Response) ContentType() string {
	return r.Headers.Get("Content-Type")
}

// MediaType returns the lower-cased media type without parameters, or ""
// when the header is absent or malformed.
func (r *Response) MediaType() string {
	mt, _, err := mime.ParseMediaType(r.ContentType())
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}
