// Package model defines the data records produced by a crawl: text chunks
// for retrieval indexing, per-page summaries, and the framework export
// shapes. All types here are plain data with stable JSON field names that
// downstream consumers depend on.
package model
