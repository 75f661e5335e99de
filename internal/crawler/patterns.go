package crawler

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PatternFilter builds a URL filter from include and exclude glob
// patterns, matched against the URL path. Exclude patterns win over
// include patterns. With no include patterns, every URL that is not
// excluded passes; with include patterns, a URL must match at least one.
//
// The returned function is suitable for WithURLFilter.
func PatternFilter(include, exclude []string) func(string) bool {
	return func(rawURL string) bool {
		u, err := url.Parse(rawURL)
		if err != nil {
			return false
		}

		path := u.Path
		if path == "" {
			path = "/"
		}

		for _, pattern := range exclude {
			if matchPattern(pattern, path) {
				return false
			}
		}

		if len(include) > 0 {
			for _, pattern := range include {
				if matchPattern(pattern, path) {
					return true
				}
			}
			return false
		}

		return true
	}
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users/edit"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	// Prefix patterns like "/admin/*" should match any depth below the
	// prefix, which filepath.Match alone does not do.
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	// Extension patterns like "*.pdf" match anywhere in the tree.
	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Also try matching just the filename for bare patterns.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		filename := filepath.Base(path)
		matched, err := filepath.Match(pattern, filename)
		if err == nil && matched {
			return true
		}
	}

	return false
}
