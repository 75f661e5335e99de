package extractor

import (
	"strings"

	"github.com/ragcrawl/ragcrawl/internal/htmldoc"
	"github.com/ragcrawl/ragcrawl/internal/model"
)

// DefaultChunkSize is the default target chunk size in characters.
// Around 500 characters keeps chunks small enough for embedding models
// while preserving enough context for retrieval.
const DefaultChunkSize = 500

// RAG segments a page into heading-scoped text chunks for retrieval
// indexing. It walks the block-level content of the page's main content
// area in document order, accumulating text under the currently open
// h1/h2/h3 scope and emitting a chunk whenever the scope closes or the
// accumulated text outgrows the size target.
//
// In the base mode a single block larger than the target is emitted
// whole: chunks may exceed the target, but text is never truncated or
// rearranged. WithSplitOversize enables an extended mode that additionally
// splits oversized blocks at sentence and word boundaries.
type RAG struct {
	// chunkSize is the target chunk size in characters.
	chunkSize int

	// splitOversize enables sentence/word-level splitting of blocks
	// larger than the target.
	splitOversize bool
}

// RAGOption configures a RAG extractor.
type RAGOption func(*RAG)

// WithChunkSize sets the target chunk size in characters.
// Non-positive values are ignored and the default is kept.
func WithChunkSize(n int) RAGOption {
	return func(e *RAG) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithSplitOversize enables the extended splitting mode for blocks larger
// than the chunk size target. Split chunks carry a "-split" suffix on
// their chunk ID.
func WithSplitOversize(split bool) RAGOption {
	return func(e *RAG) {
		e.splitOversize = split
	}
}

// NewRAG creates a RAG extractor with the given options.
func NewRAG(opts ...RAGOption) *RAG {
	e := &RAG{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// section is the chunker's working state: the currently open heading scope
// and its accumulated text fragments.
type section struct {
	h1      string
	h2      string
	h3      string
	content []string
}

// headingPath returns the non-empty heading parts in order.
func (s *section) headingPath() []string {
	parts := make([]string, 0, 3)
	for _, h := range []string{s.h1, s.h2, s.h3} {
		if h != "" {
			parts = append(parts, h)
		}
	}
	return parts
}

// Extract implements Extractor. It never fails: malformed or missing
// headings degrade to empty strings, and a page without extractable
// content yields zero records.
func (e *RAG) Extract(pageURL string, doc *htmldoc.Document, meta Metadata) ([]model.Record, error) {
	pageTitle := doc.Title()
	root := contentRoot(doc)

	sec := &section{}
	if h1 := root.Find("h1"); h1 != nil {
		sec.h1 = h1.Text()
	}

	records := make([]model.Record, 0)
	emit := func(text string, split bool) {
		records = append(records, e.newChunk(text, sec, pageURL, pageTitle, meta.Depth, split))
	}
	flush := func() {
		if len(sec.content) > 0 {
			emit(strings.Join(sec.content, " "), false)
		}
	}

	for _, el := range root.FindAll("h2", "h3", "p", "ul", "ol", "pre") {
		switch el.Tag() {
		case "h2":
			flush()
			sec = &section{h1: sec.h1, h2: el.Text()}
		case "h3":
			if len(strings.Join(sec.content, " ")) > e.chunkSize {
				flush()
				sec.content = nil
			}
			sec.h3 = el.Text()
		default:
			text := el.Text()
			if el.Tag() == "pre" {
				if raw := el.RawText(); raw != "" {
					text = "[CODE]\n" + raw + "\n[/CODE]"
				} else {
					text = ""
				}
			}
			if text == "" {
				continue
			}
			sec.content = append(sec.content, text)

			if e.splitOversize && len(strings.Join(sec.content, " ")) > e.chunkSize {
				if len(text) > e.chunkSize {
					// Flush the section without the oversized block,
					// then split the block on its own.
					sec.content = sec.content[:len(sec.content)-1]
					flush()
					e.splitLarge(text, emit)
				} else {
					flush()
				}
				sec.content = nil
			}
		}
	}

	flush()

	return records, nil
}

// contentRoot locates the main content area of the page: the first of
// <main>, <article>, class "content", id "content", falling back to the
// whole document.
func contentRoot(doc *htmldoc.Document) *htmldoc.Element {
	for _, selector := range []string{"main", "article", ".content", "#content"} {
		if el := doc.Find(selector); el != nil {
			return el
		}
	}
	return doc.Root()
}

// newChunk builds a Chunk from the current section state.
func (e *RAG) newChunk(text string, sec *section, pageURL, pageTitle string, depth int, split bool) model.Chunk {
	parts := sec.headingPath()

	chunkID := pageURL + "#" + strings.Join(parts, "-")
	if split {
		chunkID += "-split"
	}

	return model.Chunk{
		Text:      text,
		Title:     model.JoinTitle(parts, pageTitle),
		PageTitle: pageTitle,
		H1:        sec.h1,
		H2:        sec.h2,
		H3:        sec.h3,
		URL:       pageURL,
		Source:    pageURL,
		Depth:     depth,
		CharCount: len(text),
		ChunkID:   chunkID,
	}
}

// splitLarge splits an oversized block into target-sized chunks, first at
// sentence boundaries and then at word boundaries for sentences that are
// themselves larger than the target.
func (e *RAG) splitLarge(large string, emit func(text string, split bool)) {
	var current []string
	currentLen := 0

	flushCurrent := func() {
		if len(current) > 0 {
			emit(strings.Join(current, " "), true)
			current = nil
			currentLen = 0
		}
	}

	for _, sentence := range strings.Split(large, ". ") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if !strings.HasSuffix(sentence, ".") && !strings.HasSuffix(sentence, "!") && !strings.HasSuffix(sentence, "?") {
			sentence += "."
		}

		if currentLen+len(sentence) > e.chunkSize && len(current) > 0 {
			flushCurrent()
		}

		if len(sentence) > e.chunkSize {
			var words []string
			wordLen := 0
			for _, word := range strings.Fields(sentence) {
				wordLen += len(word) + 1
				if wordLen > e.chunkSize && len(words) > 0 {
					emit(strings.Join(words, " "), true)
					words = nil
					wordLen = len(word) + 1
				}
				words = append(words, word)
			}
			if len(words) > 0 {
				current = append(current, words...)
				currentLen += wordLen
			}
		} else {
			current = append(current, sentence)
			currentLen += len(sentence)
		}
	}

	flushCurrent()
}
