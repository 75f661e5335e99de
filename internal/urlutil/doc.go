// Package urlutil provides URL normalization, validation, and domain
// scoping helpers used by the crawl engine. All functions are pure.
package urlutil
