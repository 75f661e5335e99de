// Package main provides the entry point for the ragcrawl CLI.
//
// ragcrawl crawls websites breadth-first and converts each page into
// retrieval-ready text chunks for semantic-search / RAG indexing.
//
// Usage:
//
//	ragcrawl crawl https://docs.example.com
//	ragcrawl crawl --json https://docs.example.com
//
// See --help for all available options.
package main

// main is the entry point for ragcrawl.
func main() {
	Execute()
}
