package report

import (
	"io"
	"sort"
	"time"

	"github.com/ragcrawl/ragcrawl/internal/session"
)

// CrawlReport bundles a crawl result with the context the writers need.
type CrawlReport struct {
	// StartURL is the crawl's start URL.
	StartURL string

	// GeneratedAt is when the report was created.
	GeneratedAt time.Time

	// Result is the crawl outcome being reported.
	Result *session.CrawlResult
}

// NewCrawlReport creates a CrawlReport timestamped now.
func NewCrawlReport(startURL string, result *session.CrawlResult) *CrawlReport {
	return &CrawlReport{
		StartURL:    startURL,
		GeneratedAt: time.Now(),
		Result:      result,
	}
}

// PageCount is the number of chunks extracted from one page.
type PageCount struct {
	URL    string
	Chunks int
}

// PageCounts returns per-page chunk counts, most chunks first. Pages with
// equal counts are ordered by URL for stable output.
func (r *CrawlReport) PageCounts() []PageCount {
	counts := make(map[string]int)
	for _, c := range r.Result.Chunks {
		counts[c.URL]++
	}

	pages := make([]PageCount, 0, len(counts))
	for url, n := range counts {
		pages = append(pages, PageCount{URL: url, Chunks: n})
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Chunks != pages[j].Chunks {
			return pages[i].Chunks > pages[j].Chunks
		}
		return pages[i].URL < pages[j].URL
	})
	return pages
}

// HeadingCoverage counts chunks by the deepest heading level they carry.
type HeadingCoverage struct {
	H3   int
	H2   int
	H1   int
	None int
}

// Coverage computes the heading coverage of the report's chunks.
func (r *CrawlReport) Coverage() HeadingCoverage {
	var cov HeadingCoverage
	for _, c := range r.Result.Chunks {
		switch {
		case c.H3 != "":
			cov.H3++
		case c.H2 != "":
			cov.H2++
		case c.H1 != "":
			cov.H1++
		default:
			cov.None++
		}
	}
	return cov
}

// Writer defines the interface for report output.
// Implementations write crawl results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *CrawlReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *CrawlReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
