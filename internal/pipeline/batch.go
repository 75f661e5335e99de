package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ragcrawl/ragcrawl/internal/session"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of crawls run in parallel unless
// overridden.
const DefaultConcurrency = 3

// TargetResult is the outcome of crawling one batch target. Err is set
// when the crawl failed outright; Result then holds whatever partial
// snapshot was available (possibly nil).
type TargetResult struct {
	StartURL string
	Result   *session.CrawlResult
	Err      error
}

// BatchProcessor crawls multiple start URLs concurrently.
//
// Design decision: We use a session factory rather than a shared Session
// because:
// 1. Each crawl needs its own frontier and visited set
// 2. A fresh session per target means no cross-target state to lock
// 3. The factory lets callers vary per-target configuration later
type BatchProcessor struct {
	// sessionFactory creates a fresh session for each target.
	sessionFactory func() *session.Session

	// concurrency is the maximum number of concurrent crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results holds completed target results in input order.
	// Access is synchronized via mutex.
	results []TargetResult
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent crawls.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. sessionFactory is called
// once per target so that no session state leaks between crawls.
func NewBatchProcessor(sessionFactory func() *session.Session, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		sessionFactory: sessionFactory,
		concurrency:    DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls the given start URLs concurrently and returns one
// result per URL, in input order. A failed target carries its error in
// its TargetResult; only context cancellation surfaces as the returned
// error, and even then the completed results are returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, startURLs []string) ([]TargetResult, error) {
	bp.logger.Info("starting batch crawl",
		"total_targets", len(startURLs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	bp.results = make([]TargetResult, len(startURLs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, startURL := range startURLs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("crawling target",
				"startURL", startURL,
				"index", i+1,
				"total", len(startURLs),
			)

			result, err := bp.sessionFactory().Crawl(ctx, startURL)

			bp.mu.Lock()
			bp.results[i] = TargetResult{StartURL: startURL, Result: result, Err: err}
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("target failed",
					"startURL", startURL,
					"error", err,
				)
				// Keep the other targets running; the error lives in
				// the TargetResult.
				return nil
			}

			bp.logger.Info("target complete",
				"startURL", startURL,
				"pages", result.Stats.VisitedCount,
				"chunks", result.Stats.ChunkCount,
			)

			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch crawl complete",
		"total_targets", len(startURLs),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback crawls the start URLs and calls the callback
// for each completed target. The callback runs on the goroutine that
// finished the crawl, so it must be safe for concurrent use if it
// touches shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	startURLs []string,
	callback func(result TargetResult, index int),
) error {
	bp.logger.Info("starting batch crawl with callback",
		"total_targets", len(startURLs),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, startURL := range startURLs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			result, err := bp.sessionFactory().Crawl(ctx, startURL)
			callback(TargetResult{StartURL: startURL, Result: result, Err: err}, i)

			return nil
		})
	}

	return g.Wait()
}
