package common

import (
	"net/url"
	"strings"
)

// sensitiveParams are query parameters that must never reach logs.
var sensitiveParams = []string{"api_key", "email"}

// SanitizeURL removes credential-bearing query parameters from a URL
// before it is logged. Used for NCBI E-utilities requests, which carry
// api_key and email in the query string.
func SanitizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	q := u.Query()

	changed := false

	for _, p := range sensitiveParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")

			changed = true
		}
	}

	if changed {
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// RedactKey masks an API key for display, keeping the first and last
// two characters when the key is long enough.
func RedactKey(key string) string {
	if key == "" {
		return ""
	}

	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}

	return key[:2] + strings.Repeat("*", len(key)-4) + key[len(key)-2:]
}
