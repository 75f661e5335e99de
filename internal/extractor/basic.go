package extractor

import (
	"github.com/ragcrawl/ragcrawl/internal/htmldoc"
	"github.com/ragcrawl/ragcrawl/internal/model"
)

// Basic extracts lightweight page metadata: one PageSummary per page.
// This is the default extraction mode for structure-only crawls where the
// caller wants a site map rather than indexable content.
type Basic struct{}

// NewBasic creates a Basic extractor.
func NewBasic() *Basic {
	return &Basic{}
}

// Extract implements Extractor.
func (e *Basic) Extract(pageURL string, doc *htmldoc.Document, meta Metadata) ([]model.Record, error) {
	summary := model.PageSummary{
		URL:        pageURL,
		Depth:      meta.Depth,
		Title:      doc.Title(),
		TextLength: len(doc.Root().Text()),
		LinkCount:  len(doc.FindAll("a")),
	}
	return []model.Record{summary}, nil
}
