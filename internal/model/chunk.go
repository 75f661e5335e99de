package model

import "strings"

// Record is the unit of extractor output. Concrete types are Chunk (RAG
// mode) and PageSummary (basic mode).
//
// Design decision: We use a small interface rather than interface{} so the
// crawler can aggregate mixed extractor output while callers still recover
// the page grouping without reflection on unknown shapes.
type Record interface {
	// RecordSource returns the URL of the page the record was
	// extracted from.
	RecordSource() string
}

// Chunk is a bounded text segment tagged with its heading lineage. It is
// the unit of output for retrieval indexing and is immutable once created.
//
// The JSON field names are a compatibility surface: existing downstream
// indexers consume them as-is, so they must not change.
type Chunk struct {
	// Text is the chunk's content, the space-joined accumulated
	// block texts of its section.
	Text string `json:"text"`

	// Title is the " > "-joined non-empty heading path, falling back
	// to PageTitle when no headings are present.
	Title string `json:"title"`

	// PageTitle is the page's <title> text.
	PageTitle string `json:"page_title"`

	// H1, H2, H3 are the heading scope the chunk was collected under.
	// Absent headings are empty strings.
	H1 string `json:"h1"`
	H2 string `json:"h2"`
	H3 string `json:"h3"`

	// URL is the page the chunk came from.
	URL string `json:"url"`

	// Source duplicates URL for consumers that expect a source field.
	Source string `json:"source"`

	// Depth is the crawl depth of the page.
	Depth int `json:"depth"`

	// CharCount equals len(Text).
	CharCount int `json:"char_count"`

	// ChunkID is derived deterministically from the URL and heading
	// path: url + "#" + "-"-joined non-empty heading parts.
	ChunkID string `json:"chunk_id"`
}

// RecordSource implements Record.
func (c Chunk) RecordSource() string {
	return c.URL
}

// HeadingPath returns the non-empty heading parts in h1, h2, h3 order.
func (c Chunk) HeadingPath() []string {
	parts := make([]string, 0, 3)
	for _, h := range []string{c.H1, c.H2, c.H3} {
		if h != "" {
			parts = append(parts, h)
		}
	}
	return parts
}

// JoinTitle derives a chunk title from heading parts, falling back to the
// page title when no headings are present.
func JoinTitle(parts []string, pageTitle string) string {
	if len(parts) == 0 {
		return pageTitle
	}
	return strings.Join(parts, " > ")
}

// PageSummary is the basic-mode extraction record: lightweight page
// metadata without content chunking. Field names are a compatibility
// surface like Chunk's.
type PageSummary struct {
	// URL is the page URL.
	URL string `json:"url"`

	// Depth is the crawl depth of the page.
	Depth int `json:"depth"`

	// Title is the page's <title> text.
	Title string `json:"title"`

	// TextLength is the length of the page's visible text.
	TextLength int `json:"text_length"`

	// LinkCount is the number of anchor elements on the page.
	LinkCount int `json:"link_count"`
}

// RecordSource implements Record.
func (p PageSummary) RecordSource() string {
	return p.URL
}
