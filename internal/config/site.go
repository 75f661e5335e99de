package config

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing crawl behavior per site.
type SiteConfig struct {
	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global MaxDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// MaxPages overrides the global page cap for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// ChunkSize overrides the global chunk size target for this site.
	// If zero, the global ChunkSize is used.
	ChunkSize int `yaml:"chunkSize,omitempty"`

	// ExcludePatterns are URL patterns to skip during crawling.
	// Patterns are matched against the URL path using glob syntax.
	ExcludePatterns []string `yaml:"excludePatterns,omitempty"`

	// IncludePatterns are URL patterns to follow during crawling.
	// If specified, only URLs matching these patterns are crawled.
	IncludePatterns []string `yaml:"includePatterns,omitempty"`
}

// File represents the structure of the .ragcrawl configuration file.
type File struct {
	// Sites maps hosts to their site-specific configurations.
	// Keys should be the host without the protocol (e.g., "docs.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if siteConfig.ChunkSize != 0 {
			result.ChunkSize = siteConfig.ChunkSize
		}
		if len(siteConfig.Headers) > 0 {
			// Merge into a fresh map. The struct copy above aliases the
			// defaults' header map, and writing through it would leak one
			// site's headers into every later lookup.
			merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range siteConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
		if len(siteConfig.ExcludePatterns) > 0 {
			result.ExcludePatterns = siteConfig.ExcludePatterns
		}
		if len(siteConfig.IncludePatterns) > 0 {
			result.IncludePatterns = siteConfig.IncludePatterns
		}
	}

	return result
}
