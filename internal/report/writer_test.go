package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ragcrawl/ragcrawl/internal/crawler"
	"github.com/ragcrawl/ragcrawl/internal/model"
	"github.com/ragcrawl/ragcrawl/internal/session"
)

func sampleReport() *CrawlReport {
	chunks := []model.Chunk{
		{
			Text:      "Run the installer to set up the toolchain.",
			Title:     "Guide - Install",
			PageTitle: "Guide",
			H1:        "Guide",
			H2:        "Install",
			URL:       "https://docs.example.com/getting-started",
			Source:    "https://docs.example.com/getting-started",
			Depth:     1,
			CharCount: 42,
			ChunkID:   "https://docs.example.com/getting-started#Guide-Install",
		},
		{
			Text:      "Edit the settings file before first use.",
			Title:     "Guide - Configure",
			PageTitle: "Guide",
			H1:        "Guide",
			H2:        "Configure",
			URL:       "https://docs.example.com/getting-started",
			Source:    "https://docs.example.com/getting-started",
			Depth:     1,
			CharCount: 40,
			ChunkID:   "https://docs.example.com/getting-started#Guide-Configure",
		},
		{
			Text:      "Welcome to the documentation.",
			Title:     "Home",
			PageTitle: "Home",
			URL:       "https://docs.example.com",
			Source:    "https://docs.example.com",
			Depth:     0,
			CharCount: 29,
			ChunkID:   "https://docs.example.com#",
		},
	}

	return NewCrawlReport("https://docs.example.com", &session.CrawlResult{
		URLs:   []string{"https://docs.example.com", "https://docs.example.com/getting-started"},
		Chunks: chunks,
		Stats: crawler.Stats{
			VisitedCount:   2,
			QueuedCount:    0,
			CollectedCount: 2,
			ChunkCount:     3,
		},
		RAGStats: &session.RAGStats{
			TotalChunks:   3,
			AvgChunkSize:  37.0,
			MinChunkSize:  29,
			MaxChunkSize:  42,
			ChunksPerPage: 1.5,
		},
	})
}

func TestCrawlReportPageCounts(t *testing.T) {
	t.Parallel()

	pages := sampleReport().PageCounts()
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	// Most chunks first.
	if pages[0].URL != "https://docs.example.com/getting-started" || pages[0].Chunks != 2 {
		t.Errorf("pages[0] = %+v", pages[0])
	}
	if pages[1].Chunks != 1 {
		t.Errorf("pages[1] = %+v", pages[1])
	}
}

func TestCrawlReportCoverage(t *testing.T) {
	t.Parallel()

	cov := sampleReport().Coverage()
	if cov.H2 != 2 {
		t.Errorf("H2 = %d, want 2", cov.H2)
	}
	if cov.None != 1 {
		t.Errorf("None = %d, want 1", cov.None)
	}
	if cov.H1 != 0 || cov.H3 != 0 {
		t.Errorf("H1 = %d, H3 = %d, want 0 each", cov.H1, cov.H3)
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output parses and carries chunk fields", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		var decoded struct {
			Data  []map[string]any `json:"data"`
			Stats map[string]int   `json:"stats"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded.Data) != 3 {
			t.Fatalf("got %d chunks, want 3", len(decoded.Data))
		}
		if decoded.Data[0]["chunk_id"] == "" {
			t.Error("chunk_id missing from JSON output")
		}
		if decoded.Stats["visited_count"] != 2 {
			t.Errorf("visited_count = %d, want 2", decoded.Stats["visited_count"])
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("pretty-printed output has no indentation")
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFullJSONWriter(&buf, "1.2.3")

	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded JSONReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", decoded.Version)
	}
	if decoded.StartURL != "https://docs.example.com" {
		t.Errorf("StartURL = %q", decoded.StartURL)
	}
	if decoded.GeneratedAt == "" {
		t.Error("GeneratedAt is empty")
	}
	if decoded.Result == nil || len(decoded.Result.Chunks) != 3 {
		t.Error("Result missing chunks")
	}
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("got %d rows, want header plus 3 chunks", len(records))
	}
	if records[0][0] != "chunk_id" || records[0][len(records[0])-1] != "text" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][1] != "https://docs.example.com/getting-started" {
		t.Errorf("first chunk url = %q", records[1][1])
	}
	if records[3][9] != "Welcome to the documentation." {
		t.Errorf("last chunk text = %q", records[3][9])
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Crawl Report",
		"## Chunk Summary",
		"## Heading Coverage",
		"## Pages",
		"`https://docs.example.com`",
		"mermaid",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}

	// Path slugs become readable page names.
	if !strings.Contains(out, "Getting Started") {
		t.Errorf("markdown output missing display name: %s", out)
	}
}

func TestMarkdownWriterNoChunks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	report := NewCrawlReport("https://empty.example.com", &session.CrawlResult{
		URLs:  []string{"https://empty.example.com"},
		Stats: crawler.Stats{VisitedCount: 1, CollectedCount: 1},
	})

	if _, err := w.Write(report); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "no chunks") {
		t.Errorf("markdown output missing empty notice: %s", buf.String())
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf, WithShowPages(true))

	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"CRAWL REPORT",
		"Start URL:      https://docs.example.com",
		"Pages Crawled:  2",
		"TOTAL:     3",
		"PAGES",
		"https://docs.example.com/getting-started",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestPageDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"slug path", "https://docs.example.com/getting-started", "Getting Started"},
		{"underscore slug", "https://docs.example.com/api_reference", "Api Reference"},
		{"file extension stripped", "https://docs.example.com/faq.html", "Faq"},
		{"root uses host", "https://docs.example.com", "docs.example.com"},
		{"trailing slash uses last segment", "https://docs.example.com/guides/", "Guides"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := pageDisplayName(tt.url); got != tt.want {
				t.Errorf("pageDisplayName(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// errWriter always fails, for MultiWriter error propagation.
type errWriter struct{}

func (errWriter) Write(*CrawlReport) (int, error) {
	return 0, errors.New("write failed")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewJSONWriter(&a), NewSimpleWriter(&b))

		if _, err := mw.Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("not all writers received output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		mw := NewMultiWriter(errWriter{}, NewSimpleWriter(&after))

		if _, err := mw.Write(sampleReport()); err == nil {
			t.Fatal("Write() error = nil, want propagated error")
		}
		if after.Len() != 0 {
			t.Error("writer after the failing one still received output")
		}
	})
}
