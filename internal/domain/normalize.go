// Package domain decides which company records survive a run: it derives
// comparable domain keys, rejects non-company sites and collapses duplicates.
package domain

import (
	"net/url"
	"strings"
)

// Key is the canonical host used for blocklist and duplicate comparisons.
// It is never displayed.
type Key string

// Normalize lower-cases the URL's host, drops any port and strips one
// leading "www.". A URL that does not parse, or parses without a host,
// yields the trimmed input unchanged.
func Normalize(rawURL string) Key {
	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil || u.Hostname() == "" {
		return Key(trimmed)
	}
	host := strings.ToLower(u.Hostname())
	return Key(strings.TrimPrefix(host, "www."))
}

// Matches reports whether k is entry itself or one of its subdomains.
func (k Key) Matches(entry string) bool {
	s := string(k)
	return s == entry || strings.HasSuffix(s, "."+entry)
}
