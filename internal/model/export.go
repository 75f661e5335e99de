package model

// LangChainDocument is the LangChain-compatible reshaping of a Chunk.
// The mapping is a pure transformation; field names follow the framework's
// document loader conventions.
type LangChainDocument struct {
	PageContent string            `json:"page_content"`
	Metadata    LangChainMetadata `json:"metadata"`
}

// LangChainMetadata carries the chunk's provenance for LangChain.
type LangChainMetadata struct {
	Source    string `json:"source"`
	Title     string `json:"title"`
	H1        string `json:"h1"`
	H2        string `json:"h2"`
	H3        string `json:"h3"`
	ChunkID   string `json:"chunk_id"`
	CharCount int    `json:"char_count"`
}

// ToLangChain converts chunks to LangChain document shape.
func ToLangChain(chunks []Chunk) []LangChainDocument {
	docs := make([]LangChainDocument, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, LangChainDocument{
			PageContent: c.Text,
			Metadata: LangChainMetadata{
				Source:    c.URL,
				Title:     c.Title,
				H1:        c.H1,
				H2:        c.H2,
				H3:        c.H3,
				ChunkID:   c.ChunkID,
				CharCount: c.CharCount,
			},
		})
	}
	return docs
}

// LlamaIndexNode is the LlamaIndex-compatible reshaping of a Chunk.
type LlamaIndexNode struct {
	Text     string             `json:"text"`
	Metadata LlamaIndexMetadata `json:"metadata"`
}

// LlamaIndexMetadata carries the chunk's provenance for LlamaIndex.
// Headings holds the non-empty h1/h2/h3 values in order.
type LlamaIndexMetadata struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Headings []string `json:"headings"`
	ChunkID  string   `json:"chunk_id"`
}

// ToLlamaIndex converts chunks to LlamaIndex node shape.
func ToLlamaIndex(chunks []Chunk) []LlamaIndexNode {
	nodes := make([]LlamaIndexNode, 0, len(chunks))
	for _, c := range chunks {
		nodes = append(nodes, LlamaIndexNode{
			Text: c.Text,
			Metadata: LlamaIndexMetadata{
				URL:      c.URL,
				Title:    c.Title,
				Headings: c.HeadingPath(),
				ChunkID:  c.ChunkID,
			},
		})
	}
	return nodes
}
