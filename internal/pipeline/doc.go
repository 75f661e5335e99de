// Package pipeline fans a batch of crawl targets out over a bounded pool
// of goroutines. Each target gets a fresh session with its own frontier,
// visited set, and extractor, so targets never share mutable state; a
// failed target is recorded in its result without aborting the rest of
// the batch.
package pipeline
