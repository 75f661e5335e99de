package urlutil

import (
	"net/url"
	"strings"
)

// Normalize canonicalizes a URL for deduplication.
//
// Design decision: We normalize URLs because:
//  1. Same page can have different URL representations
//  2. Fragment (#anchor) doesn't change content
//  3. Trailing slashes rarely distinguish pages in practice
//
// The fragment is dropped, and a trailing slash is stripped unless the
// path is exactly "/". Normalize is idempotent: applying it twice yields
// the same result as applying it once. Unparseable input is returned
// unchanged.
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	origPath := u.Path
	u.Fragment = ""

	normalized := u.String()
	if strings.HasSuffix(normalized, "/") && origPath != "/" {
		normalized = strings.TrimRight(normalized, "/")
	}

	return normalized
}

// IsValid reports whether the URL is crawlable, which means it parses
// and uses the http or https scheme.
func IsValid(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// DomainOf returns the scheme://host[:port] component of a URL.
// For unparseable input it returns an empty string.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// SameDomain reports whether rawURL belongs to the domain identified by
// domainOrURL. The second argument accepts two forms:
//
//   - A full URL ("https://example.com/docs"): both sides compare by
//     their DomainOf value, so scheme and port must match.
//   - A bare host ("example.com"): matches when the URL's domain ends
//     with the host, or equals it with either scheme prepended.
//
// The bare-host suffix match can over-match hosts that merely end with
// the given string (e.g. "evil-example.com" ends with "example.com").
// The dual-mode behavior is kept for compatibility with existing crawl
// configurations; callers needing strict scoping should pass a full URL.
func SameDomain(rawURL, domainOrURL string) bool {
	if !strings.HasPrefix(domainOrURL, "http://") && !strings.HasPrefix(domainOrURL, "https://") {
		domain := DomainOf(rawURL)
		return strings.HasSuffix(domain, domainOrURL) ||
			domain == "https://"+domainOrURL ||
			domain == "http://"+domainOrURL
	}

	return DomainOf(rawURL) == DomainOf(domainOrURL)
}
