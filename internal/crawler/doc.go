// Package crawler provides the breadth-first crawl traversal engine.
//
// # Architecture
//
// The engine owns exactly two pieces of state: the frontier (a FIFO queue
// of url/depth pairs) and the visited set. Each loop iteration pops one
// entry, fetches it through the external Fetcher collaborator, hands the
// parsed page to the configured Extractor, and enqueues newly discovered
// links at depth+1. Traversal is strictly breadth-first: pages are visited
// in discovery order, and a page's depth is the hop count along the path
// that first discovered it.
//
// Design decision: The engine is single-threaded by construction. One
// iteration fully processes one URL before the next pop, so no locking is
// needed: there is exactly one mutator of frontier, visited set, and
// collected results. Concurrency across crawl targets happens one level
// up (see the pipeline package) by running fully independent engines.
//
// # Failure model
//
//   - An invalid start URL fails the whole crawl before any frontier work.
//   - A fetch failure skips the page; the visited count still increments.
//   - An extraction failure is reported to the error observer and the
//     crawl continues.
package crawler
