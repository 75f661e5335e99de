// Package session provides the high-level RAG crawl API: a Session
// composes the HTTP fetcher, the traversal engine, and the chunking
// extractor, and offers query and export operations over the collected
// chunks.
//
// A Session keeps the last crawl's snapshot so that chunk queries and
// framework exports work without re-crawling. Sessions are not safe for
// concurrent use; the pipeline package runs independent Sessions in
// parallel.
package session
