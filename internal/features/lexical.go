package features

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// ExtractURLFeatures computes features 1-5 from the URL string. It does no
// I/O and does not normalize: callers normalize first so that the scheme is
// meaningful. Unparseable input still yields length, dots and '@'.
func ExtractURLFeatures(rawURL string) Lexical {
	var f Lexical
	f[0] = float64(utf8.RuneCountInString(rawURL))
	f[1] = float64(strings.Count(rawURL, "."))
	f[2] = boolToFloat(strings.Contains(rawURL, "@"))

	u, err := url.Parse(rawURL)
	if err != nil {
		return f
	}
	f[3] = boolToFloat(u.Scheme == "https")
	f[4] = boolToFloat(isIPLikeHost(u.Hostname()))
	return f
}

// isIPLikeHost reports whether host is all digits once '.' and ':' are
// removed. This covers IPv4 and colon-only IPv6 forms; hex IPv6 groups and
// shorthand like "1.1" are deliberately not validated further.
func isIPLikeHost(host string) bool {
	stripped := strings.NewReplacer(".", "", ":", "").Replace(host)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
