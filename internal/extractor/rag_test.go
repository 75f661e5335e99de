package extractor

import (
	"strings"
	"testing"

	"github.com/ragcrawl/ragcrawl/internal/htmldoc"
	"github.com/ragcrawl/ragcrawl/internal/model"
)

func parseDoc(t *testing.T, content string) *htmldoc.Document {
	t.Helper()

	doc, err := htmldoc.Parse("https://a.com/page", strings.NewReader(content))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	return doc
}

func extractChunks(t *testing.T, e *RAG, doc *htmldoc.Document) []model.Chunk {
	t.Helper()

	records, err := e.Extract("https://a.com/page", doc, Metadata{Depth: 1, URL: "https://a.com/page"})
	if err != nil {
		t.Fatalf("unexpected extract error: %v", err)
	}

	chunks := make([]model.Chunk, 0, len(records))
	for _, r := range records {
		chunk, ok := r.(model.Chunk)
		if !ok {
			t.Fatalf("expected model.Chunk, got %T", r)
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// TestRAGExtract tests the heading-aware chunking algorithm.
func TestRAGExtract(t *testing.T) {
	t.Parallel()

	t.Run("two h2 sections yield two chunks", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><head><title>Guide</title></head><body><main>
			<h1>Guide</h1>
			<h2>Install</h2>
			<p>Run the installer.</p>
			<h2>Usage</h2>
			<p>Start the tool.</p>
		</main></body></html>`)

		chunks := extractChunks(t, NewRAG(), doc)
		if len(chunks) != 2 {
			t.Fatalf("expected 2 chunks, got %d", len(chunks))
		}

		if chunks[0].H2 == chunks[1].H2 {
			t.Errorf("expected distinct h2 values, both %q", chunks[0].H2)
		}
		if chunks[0].H1 != "Guide" || chunks[1].H1 != "Guide" {
			t.Errorf("expected identical h1 'Guide', got %q and %q", chunks[0].H1, chunks[1].H1)
		}
		if chunks[0].Title != "Guide > Install" {
			t.Errorf("expected title 'Guide > Install', got %q", chunks[0].Title)
		}
		if chunks[0].ChunkID != "https://a.com/page#Guide-Install" {
			t.Errorf("unexpected chunk id %q", chunks[0].ChunkID)
		}
		if chunks[0].Depth != 1 {
			t.Errorf("expected depth 1, got %d", chunks[0].Depth)
		}
	})

	t.Run("pre block is wrapped as code", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body><main>
			<h2>Example</h2>
			<p>Run:</p>
			<pre>go build
go test</pre>
		</main></body></html>`)

		chunks := extractChunks(t, NewRAG(), doc)
		if len(chunks) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(chunks))
		}

		if !strings.Contains(chunks[0].Text, "[CODE]\ngo build\ngo test\n[/CODE]") {
			t.Errorf("expected wrapped code block, got %q", chunks[0].Text)
		}
	})

	t.Run("no headings falls back to page title", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><head><title>Plain Page</title></head><body>
			<p>Just a paragraph.</p>
		</body></html>`)

		chunks := extractChunks(t, NewRAG(), doc)
		if len(chunks) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(chunks))
		}

		chunk := chunks[0]
		if chunk.Title != "Plain Page" {
			t.Errorf("expected title 'Plain Page', got %q", chunk.Title)
		}
		if chunk.H1 != "" || chunk.H2 != "" || chunk.H3 != "" {
			t.Errorf("expected empty headings, got %q %q %q", chunk.H1, chunk.H2, chunk.H3)
		}
		if chunk.ChunkID != "https://a.com/page#" {
			t.Errorf("unexpected chunk id %q", chunk.ChunkID)
		}
	})

	t.Run("empty content root yields zero chunks", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body><main></main></body></html>`)
		chunks := extractChunks(t, NewRAG(), doc)
		if len(chunks) != 0 {
			t.Errorf("expected 0 chunks, got %d", len(chunks))
		}
	})

	t.Run("h3 flushes when content exceeds target", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body><main>
			<h1>Top</h1>
			<p>This paragraph is certainly longer than the tiny target.</p>
			<h3>Details</h3>
			<p>More text.</p>
		</main></body></html>`)

		chunks := extractChunks(t, NewRAG(WithChunkSize(10)), doc)
		if len(chunks) != 2 {
			t.Fatalf("expected 2 chunks, got %d", len(chunks))
		}

		if chunks[0].H3 != "" {
			t.Errorf("first chunk should precede the h3, got h3 %q", chunks[0].H3)
		}
		if chunks[1].H3 != "Details" {
			t.Errorf("second chunk should carry h3 'Details', got %q", chunks[1].H3)
		}
	})

	t.Run("content root preference", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body>
			<p>outside</p>
			<main><p>inside main</p></main>
		</body></html>`)

		chunks := extractChunks(t, NewRAG(), doc)
		if len(chunks) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(chunks))
		}
		if chunks[0].Text != "inside main" {
			t.Errorf("expected content scoped to <main>, got %q", chunks[0].Text)
		}
	})

	t.Run("oversized paragraph is not truncated in base mode", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("word ", 200)
		doc := parseDoc(t, `<html><body><main><p>`+long+`</p></main></body></html>`)

		chunks := extractChunks(t, NewRAG(WithChunkSize(100)), doc)
		if len(chunks) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(chunks))
		}
		if chunks[0].CharCount <= 100 {
			t.Errorf("expected chunk larger than target, got %d chars", chunks[0].CharCount)
		}
	})

	t.Run("char_count equals text length", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body><main>
			<h1>T</h1>
			<h2>A</h2><p>alpha beta</p>
			<h2>B</h2><pre>x := 1</pre>
		</main></body></html>`)

		for _, chunk := range extractChunks(t, NewRAG(), doc) {
			if chunk.CharCount != len(chunk.Text) {
				t.Errorf("chunk %q: char_count %d != len(text) %d", chunk.ChunkID, chunk.CharCount, len(chunk.Text))
			}
		}
	})
}

// TestRAGSplitOversize tests the extended sentence/word splitting mode.
func TestRAGSplitOversize(t *testing.T) {
	t.Parallel()

	t.Run("oversized block splits into bounded chunks", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		for i := 0; i < 30; i++ {
			sb.WriteString("This sentence fills out the paragraph with useful words. ")
		}
		doc := parseDoc(t, `<html><head><title>Long</title></head><body><main><p>`+sb.String()+`</p></main></body></html>`)

		chunks := extractChunks(t, NewRAG(WithChunkSize(200), WithSplitOversize(true)), doc)
		if len(chunks) < 2 {
			t.Fatalf("expected multiple split chunks, got %d", len(chunks))
		}

		for _, chunk := range chunks {
			if !strings.HasSuffix(chunk.ChunkID, "-split") {
				t.Errorf("expected -split chunk id, got %q", chunk.ChunkID)
			}
			if chunk.CharCount != len(chunk.Text) {
				t.Errorf("char_count invariant violated for %q", chunk.ChunkID)
			}
		}
	})

	t.Run("small blocks still flush whole", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<html><body><main>
			<p>First short paragraph here.</p>
			<p>Second short paragraph here.</p>
		</main></body></html>`)

		chunks := extractChunks(t, NewRAG(WithChunkSize(30), WithSplitOversize(true)), doc)
		if len(chunks) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(chunks))
		}
		if strings.HasSuffix(chunks[0].ChunkID, "-split") {
			t.Errorf("whole-section flush must not carry -split id, got %q", chunks[0].ChunkID)
		}
		if !strings.Contains(chunks[0].Text, "First short") || !strings.Contains(chunks[0].Text, "Second short") {
			t.Errorf("expected both paragraphs in the flushed chunk, got %q", chunks[0].Text)
		}
	})
}

// TestBasicExtract tests the basic metadata extractor.
func TestBasicExtract(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><head><title>Home</title></head><body>
		<p>Welcome to the site.</p>
		<a href="/a">A</a>
		<a href="/b">B</a>
	</body></html>`)

	records, err := NewBasic().Extract("https://a.com/page", doc, Metadata{Depth: 2, URL: "https://a.com/page"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	summary, ok := records[0].(model.PageSummary)
	if !ok {
		t.Fatalf("expected model.PageSummary, got %T", records[0])
	}

	if summary.Title != "Home" {
		t.Errorf("expected title 'Home', got %q", summary.Title)
	}
	if summary.Depth != 2 {
		t.Errorf("expected depth 2, got %d", summary.Depth)
	}
	if summary.LinkCount != 2 {
		t.Errorf("expected 2 links, got %d", summary.LinkCount)
	}
	if summary.TextLength == 0 {
		t.Error("expected non-zero text length")
	}
}
