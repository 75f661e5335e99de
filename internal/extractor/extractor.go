package extractor

import (
	"github.com/ragcrawl/ragcrawl/internal/htmldoc"
	"github.com/ragcrawl/ragcrawl/internal/model"
)

// Metadata carries crawl context into an extraction call.
type Metadata struct {
	// Depth is the page's distance in link hops from the start URL.
	Depth int

	// URL is the normalized URL of the page being extracted.
	URL string
}

// Extractor converts one fetched page into zero or more records.
// Implementations must be stateless per call: the same document and
// metadata always yield the same records.
type Extractor interface {
	// Extract processes a parsed page. A non-nil error is reported to
	// the crawl's error observer and never aborts the crawl.
	Extract(pageURL string, doc *htmldoc.Document, meta Metadata) ([]model.Record, error)
}
