package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

var (
	ErrEmptyURL    = errors.New("empty url")
	ErrMissingHost = errors.New("missing host")
	ErrNoScheme    = errors.New("missing scheme")
)

// schemePrefix matches an explicit "scheme://" at the start of a string.
var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://`)

// NormalizeURL trims surrounding whitespace and prepends "https://" when the
// string carries no explicit scheme. Applying it twice is a no-op.
//
//	"example.com/login"  -> "https://example.com/login"
//	"http://example.com" -> "http://example.com"
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if schemePrefix.MatchString(raw) {
		return raw
	}
	return "https://" + raw
}

// ValidateURL reports whether raw parses as a URL with both a scheme and a
// host. It never panics; malformed input is simply invalid.
func ValidateURL(raw string) bool {
	return checkURL(raw) == nil
}

func checkURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" {
		return ErrNoScheme
	}
	if u.Host == "" {
		return ErrMissingHost
	}
	return nil
}

// ParseTarget normalizes raw and validates the result. It is what every
// entry point (CLI, HTTP, ingestion) calls before feature extraction.
func ParseTarget(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyURL
	}
	normalized := NormalizeURL(raw)
	if err := checkURL(normalized); err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	return normalized, nil
}

// Common tracking params stripped by Canonicalize.
var trackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {}, "utm_content": {},
	"gclid": {}, "fbclid": {}, "mc_cid": {}, "mc_eid": {},
}

// Canonicalize returns a stable key for a URL, used to group scan history:
// lower-cased scheme and punycode host, default ports, credentials, fragment
// and tracking params dropped, query sorted. It is never fed to the feature
// extractors, which see the URL exactly as normalized.
func Canonicalize(raw string) (string, error) {
	normalized, err := ParseTarget(raw)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)

	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}
	port := u.Port()
	switch {
	case (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") || port == "":
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		u.Host = host
	default:
		u.Host = net.JoinHostPort(host, port)
	}

	u.User = nil
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	q := u.Query()
	for k := range q {
		if _, ok := trackingParams[strings.ToLower(k)]; ok {
			q.Del(k)
		}
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make([]string, 0, len(keys))
	for _, k := range keys {
		values := q[k]
		sort.Strings(values)
		for _, v := range values {
			ordered = append(ordered, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	u.RawQuery = strings.Join(ordered, "&")

	return u.String(), nil
}
