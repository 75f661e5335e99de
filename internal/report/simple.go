package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs human-readable text summaries.
// This is the default terminal output after a crawl.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showPages controls whether the per-page table is shown.
	showPages bool

	// maxPages caps the per-page table when showPages is enabled.
	maxPages int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowPages enables the per-page chunk table.
func WithShowPages(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showPages = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		maxPages:   25,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl summary in human-readable format.
func (w *SimpleWriter) Write(report *CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeChunkSummary(&sb, report)
	if w.showPages {
		w.writePages(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Start URL:      %s\n", report.StartURL))
	sb.WriteString(fmt.Sprintf("Generated:      %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Pages Crawled:  %d\n", report.Result.Stats.VisitedCount))
	if report.Result.Stats.QueuedCount > 0 {
		sb.WriteString(fmt.Sprintf("Pages Queued:   %d (crawl stopped at the page cap)\n", report.Result.Stats.QueuedCount))
	}
	sb.WriteString("\n")
}

// writeChunkSummary writes the chunk statistics section.
func (w *SimpleWriter) writeChunkSummary(sb *strings.Builder, report *CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CHUNKS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	stats := report.Result.RAGStats
	if stats == nil {
		sb.WriteString("  No chunks extracted\n\n")
		return
	}

	sb.WriteString(fmt.Sprintf("  TOTAL:     %d\n", stats.TotalChunks))
	sb.WriteString(fmt.Sprintf("  AVG SIZE:  %.1f chars\n", stats.AvgChunkSize))
	sb.WriteString(fmt.Sprintf("  SMALLEST:  %d chars\n", stats.MinChunkSize))
	sb.WriteString(fmt.Sprintf("  LARGEST:   %d chars\n", stats.MaxChunkSize))
	sb.WriteString(fmt.Sprintf("  PER PAGE:  %.2f\n", stats.ChunksPerPage))
	sb.WriteString("\n")
}

// writePages writes the per-page chunk counts.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *CrawlReport) {
	pages := report.PageCounts()
	if len(pages) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	shown := pages
	if len(shown) > w.maxPages {
		shown = shown[:w.maxPages]
	}
	for _, p := range shown {
		sb.WriteString(fmt.Sprintf("  %4d  %s\n", p.Chunks, p.URL))
	}
	if len(pages) > len(shown) {
		sb.WriteString(fmt.Sprintf("  ... and %d more pages\n", len(pages)-len(shown)))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by ragcrawl\n")
	sb.WriteString("https://github.com/ragcrawl/ragcrawl\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
