package report

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownWriter outputs crawl summaries in Markdown format.
// This format is designed for documentation and sharing: it summarizes
// the crawl rather than dumping every chunk.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// maxPages caps the per-page table. Large crawls would otherwise
	// produce unreadable reports.
	maxPages int
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMaxPages limits how many pages appear in the per-page table.
func WithMaxPages(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		if n > 0 {
			w.maxPages = n
		}
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		maxPages:   25,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl summary in Markdown format.
func (w *MarkdownWriter) Write(report *CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeChunkSummary(md, report)
	w.writeCoverage(md, report)
	w.writePages(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *CrawlReport) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + report.StartURL + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Crawled", strconv.Itoa(report.Result.Stats.VisitedCount)},
			{"Pages Queued", strconv.Itoa(report.Result.Stats.QueuedCount)},
			{"Chunks", strconv.Itoa(report.Result.Stats.ChunkCount)},
		},
	})
	md.PlainText("")
}

// writeChunkSummary writes the chunk size statistics section.
func (w *MarkdownWriter) writeChunkSummary(md *markdown.Markdown, report *CrawlReport) {
	md.H2("Chunk Summary")
	md.PlainText("")

	stats := report.Result.RAGStats
	if stats == nil {
		md.Note("The crawl produced no chunks. Check that the site serves HTML and that the URL filters are not excluding every page.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Chunks", strconv.Itoa(stats.TotalChunks)},
			{"Average Size", fmt.Sprintf("%.1f chars", stats.AvgChunkSize)},
			{"Smallest", strconv.Itoa(stats.MinChunkSize) + " chars"},
			{"Largest", strconv.Itoa(stats.MaxChunkSize) + " chars"},
			{"Chunks per Page", fmt.Sprintf("%.2f", stats.ChunksPerPage)},
		},
	})
	md.PlainText("")
}

// writeCoverage writes the heading coverage pie chart.
func (w *MarkdownWriter) writeCoverage(md *markdown.Markdown, report *CrawlReport) {
	cov := report.Coverage()
	if cov.H1+cov.H2+cov.H3+cov.None == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Chunks by Deepest Heading Level"),
		piechart.WithShowData(true),
	)

	if cov.H3 > 0 {
		chart.LabelAndIntValue("H3", uint64(cov.H3))
	}
	if cov.H2 > 0 {
		chart.LabelAndIntValue("H2", uint64(cov.H2))
	}
	if cov.H1 > 0 {
		chart.LabelAndIntValue("H1", uint64(cov.H1))
	}
	if cov.None > 0 {
		chart.LabelAndIntValue("No heading", uint64(cov.None))
	}

	md.H2("Heading Coverage")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	if cov.None > 0 {
		md.Warningf(
			"%d chunk(s) carry no heading context. Retrieval quality is usually lower for these; consider raising the chunk size or checking the site's markup.",
			cov.None,
		)
		md.PlainText("")
	}
}

// writePages writes the per-page chunk table.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *CrawlReport) {
	md.H2("Pages")
	md.PlainText("")

	pages := report.PageCounts()
	if len(pages) == 0 {
		md.PlainText("No pages produced chunks.")
		md.PlainText("")
		return
	}

	truncated := false
	if len(pages) > w.maxPages {
		pages = pages[:w.maxPages]
		truncated = true
	}

	rows := make([][]string, len(pages))
	for i, p := range pages {
		rows[i] = []string{
			pageDisplayName(p.URL),
			"`" + p.URL + "`",
			strconv.Itoa(p.Chunks),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "URL", "Chunks"},
		Rows:   rows,
	})
	md.PlainText("")

	if truncated {
		md.PlainTextf("Showing the top %d pages by chunk count.", w.maxPages)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [ragcrawl](https://github.com/ragcrawl/ragcrawl)*")
}

// pageDisplayName derives a human-readable name from a page URL: the last
// path segment with slug separators replaced by spaces and title casing
// applied. The host is used for root pages.
func pageDisplayName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	segment := ""
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			segment = part
		}
	}
	if segment == "" {
		return u.Host
	}

	// Strip a file extension like .html
	if idx := strings.LastIndex(segment, "."); idx > 0 {
		segment = segment[:idx]
	}

	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	return cases.Title(language.English).String(segment)
}
