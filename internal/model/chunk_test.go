package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestChunkJSONShape verifies the compatibility field names.
func TestChunkJSONShape(t *testing.T) {
	t.Parallel()

	chunk := Chunk{
		Text:      "body text",
		Title:     "Guide > Install",
		PageTitle: "Guide",
		H1:        "Guide",
		H2:        "Install",
		URL:       "https://a.com/guide",
		Source:    "https://a.com/guide",
		Depth:     1,
		CharCount: 9,
		ChunkID:   "https://a.com/guide#Guide-Install",
	}

	data, err := json.Marshal(chunk)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	for _, field := range []string{
		`"text"`, `"title"`, `"page_title"`, `"h1"`, `"h2"`, `"h3"`,
		`"url"`, `"source"`, `"depth"`, `"char_count"`, `"chunk_id"`,
	} {
		if !strings.Contains(string(data), field) {
			t.Errorf("expected JSON field %s in %s", field, data)
		}
	}
}

// TestPageSummaryJSONShape verifies the basic-mode field names.
func TestPageSummaryJSONShape(t *testing.T) {
	t.Parallel()

	summary := PageSummary{URL: "https://a.com", Depth: 0, Title: "Home", TextLength: 10, LinkCount: 3}

	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	for _, field := range []string{`"url"`, `"depth"`, `"title"`, `"text_length"`, `"link_count"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("expected JSON field %s in %s", field, data)
		}
	}
}

// TestJoinTitle tests heading-path title derivation.
func TestJoinTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		parts     []string
		pageTitle string
		want      string
	}{
		{name: "full path", parts: []string{"A", "B", "C"}, pageTitle: "P", want: "A > B > C"},
		{name: "single part", parts: []string{"A"}, pageTitle: "P", want: "A"},
		{name: "empty falls back", parts: nil, pageTitle: "P", want: "P"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := JoinTitle(tt.parts, tt.pageTitle); got != tt.want {
				t.Errorf("JoinTitle(%v, %q) = %q, want %q", tt.parts, tt.pageTitle, got, tt.want)
			}
		})
	}
}

// TestFrameworkExports tests the LangChain and LlamaIndex reshapings.
func TestFrameworkExports(t *testing.T) {
	t.Parallel()

	chunks := []Chunk{
		{
			Text: "t", Title: "A > B", PageTitle: "P",
			H1: "A", H2: "B",
			URL: "https://a.com/x", Source: "https://a.com/x",
			CharCount: 1, ChunkID: "https://a.com/x#A-B",
		},
	}

	t.Run("langchain", func(t *testing.T) {
		t.Parallel()

		docs := ToLangChain(chunks)
		if len(docs) != 1 {
			t.Fatalf("expected 1 document, got %d", len(docs))
		}
		if docs[0].PageContent != "t" {
			t.Errorf("expected page_content 't', got %q", docs[0].PageContent)
		}
		if docs[0].Metadata.Source != "https://a.com/x" {
			t.Errorf("expected metadata source, got %q", docs[0].Metadata.Source)
		}
		if docs[0].Metadata.ChunkID != "https://a.com/x#A-B" {
			t.Errorf("unexpected chunk_id %q", docs[0].Metadata.ChunkID)
		}
	})

	t.Run("llamaindex", func(t *testing.T) {
		t.Parallel()

		nodes := ToLlamaIndex(chunks)
		if len(nodes) != 1 {
			t.Fatalf("expected 1 node, got %d", len(nodes))
		}
		if len(nodes[0].Metadata.Headings) != 2 {
			t.Fatalf("expected 2 headings, got %v", nodes[0].Metadata.Headings)
		}
		if nodes[0].Metadata.Headings[0] != "A" || nodes[0].Metadata.Headings[1] != "B" {
			t.Errorf("unexpected headings %v", nodes[0].Metadata.Headings)
		}
	})
}
