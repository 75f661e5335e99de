// Package extractor defines the pluggable per-page extraction step of a
// crawl and its two built-in implementations.
//
// # Architecture
//
// The crawler hands every successfully fetched page to an Extractor, which
// turns it into zero or more records:
//
//   - Basic: lightweight page metadata (title, text length, link count)
//   - RAG: heading-aware content chunking for retrieval indexing
//
// Design decision: Extractors are modeled as an interface with a single
// Extract method rather than an inheritance-style base type because:
//  1. Variants implement it independently, no shared state
//  2. Custom extractors plug in without touching the crawler
//  3. The crawler stays agnostic of record shapes
package extractor
