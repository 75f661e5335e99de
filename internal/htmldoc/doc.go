// Package htmldoc wraps a parsed HTML tree with the query operations the
// crawl engine and extractors need: ordered tag search, simple selector
// lookup, visible-text extraction, and link discovery.
//
// Design decision: We build on golang.org/x/net/html rather than regex or a
// heavier scraping framework because:
//  1. It correctly handles malformed HTML common on the web
//  2. It provides a proper DOM-like structure for document-order traversal
//  3. Standard library extension, well-maintained
package htmldoc
