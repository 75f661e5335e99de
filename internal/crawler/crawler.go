package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ragcrawl/ragcrawl/internal/extractor"
	"github.com/ragcrawl/ragcrawl/internal/htmldoc"
	"github.com/ragcrawl/ragcrawl/internal/model"
	"github.com/ragcrawl/ragcrawl/internal/urlutil"
)

// ErrInvalidStartURL is returned when the start URL does not use the http
// or https scheme. It is the only error that fails a crawl outright.
var ErrInvalidStartURL = errors.New("invalid start URL: scheme must be http or https")

// Fetcher is the external fetch collaborator. An error means "no document
// for this URL"; the engine never retries and never propagates the error.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*htmldoc.Document, error)
}

// frontierEntry is one queued (url, depth) pair. Entries are immutable
// once enqueued.
type frontierEntry struct {
	url   string
	depth int
}

// Stats summarizes one completed crawl.
type Stats struct {
	// VisitedCount is the number of unique URLs visited, including
	// pages whose fetch failed.
	VisitedCount int `json:"visited_count"`

	// QueuedCount is the number of frontier entries left when the
	// crawl terminated (non-zero when a page cap cut it short).
	QueuedCount int `json:"queued_count"`

	// CollectedCount is the number of URLs in visit order.
	CollectedCount int `json:"collected_count"`

	// ChunkCount is the number of records the extractor produced.
	ChunkCount int `json:"chunk_count"`
}

// Result is the immutable snapshot returned when a crawl completes.
type Result struct {
	// URLs are the visited URLs in visit order.
	URLs []string `json:"urls"`

	// Records are the extractor's output across all pages, in visit
	// order.
	Records []model.Record `json:"data"`

	// Stats summarizes the crawl.
	Stats Stats `json:"stats"`
}

// Crawler drives a breadth-first traversal of one site.
// A Crawler is not safe for concurrent use; run independent instances for
// parallel crawls.
type Crawler struct {
	fetcher   Fetcher
	extractor extractor.Extractor

	// maxDepth limits hops from the start URL. Negative means
	// unlimited; 0 means only the starting page.
	maxDepth int

	// maxPages caps the number of visited pages. Zero means unlimited.
	maxPages int

	// stayWithinDomain restricts discovered links to the start URL's
	// domain.
	stayWithinDomain bool

	// urlFilter is an optional caller-supplied predicate; URLs it
	// rejects are neither visited nor enqueued.
	urlFilter func(string) bool

	// onError receives per-page extraction failures.
	onError func(pageURL string, err error)

	// onVisit is called as each page is marked visited, before the
	// fetch. The CLI uses it for progress display.
	onVisit func(pageURL string, depth int)

	logger *slog.Logger

	// Crawl state. Reset clears all of it.
	visited       map[string]bool
	frontier      []frontierEntry
	collectedURLs []string
	collected     []model.Record
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithExtractor sets the per-page extractor. Without one, the crawl
// collects URLs and statistics only.
func WithExtractor(e extractor.Extractor) Option {
	return func(c *Crawler) {
		c.extractor = e
	}
}

// WithMaxDepth limits how many link hops from the start URL are followed.
// 0 means only the starting page; negative means unlimited.
func WithMaxDepth(depth int) Option {
	return func(c *Crawler) {
		c.maxDepth = depth
	}
}

// WithMaxPages caps the total number of pages visited. Zero means
// unlimited.
func WithMaxPages(maxPages int) Option {
	return func(c *Crawler) {
		c.maxPages = maxPages
	}
}

// WithStayWithinDomain restricts traversal to the start URL's domain.
// Enabled by default.
func WithStayWithinDomain(stay bool) Option {
	return func(c *Crawler) {
		c.stayWithinDomain = stay
	}
}

// WithURLFilter sets a predicate applied to every URL before it is
// visited or enqueued. Returning false skips the URL.
func WithURLFilter(filter func(string) bool) Option {
	return func(c *Crawler) {
		c.urlFilter = filter
	}
}

// WithErrorObserver sets the callback for per-page extraction failures.
// The default logs them at warn level.
func WithErrorObserver(onError func(pageURL string, err error)) Option {
	return func(c *Crawler) {
		c.onError = onError
	}
}

// WithVisitHook sets a callback invoked for each visited page.
func WithVisitHook(onVisit func(pageURL string, depth int)) Option {
	return func(c *Crawler) {
		c.onVisit = onVisit
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler using the given fetch collaborator.
func New(fetcher Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:          fetcher,
		maxDepth:         -1,
		maxPages:         0,
		stayWithinDomain: true,
		visited:          make(map[string]bool),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Crawl traverses the site reachable from startURL breadth-first and
// returns the collected snapshot. Any previous crawl state is discarded.
//
// The traversal visits pages in strict FIFO order relative to discovery.
// Rediscoveries of an already visited or queued URL never update its
// depth: the first discovery wins. If ctx is cancelled mid-crawl the
// partial result is returned together with the context error.
func (c *Crawler) Crawl(ctx context.Context, startURL string) (*Result, error) {
	c.Reset()

	startURL = urlutil.Normalize(startURL)
	if !urlutil.IsValid(startURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStartURL, startURL)
	}

	baseDomain := urlutil.DomainOf(startURL)
	c.frontier = append(c.frontier, frontierEntry{url: startURL, depth: 0})

	c.logger.Info("starting crawl",
		"startURL", startURL,
		"maxDepth", c.maxDepth,
		"maxPages", c.maxPages,
		"stayWithinDomain", c.stayWithinDomain,
	)

	for len(c.frontier) > 0 {
		select {
		case <-ctx.Done():
			return c.snapshot(), ctx.Err()
		default:
		}

		if c.maxPages > 0 && len(c.visited) >= c.maxPages {
			c.logger.Info("reached max pages", "maxPages", c.maxPages)
			break
		}

		entry := c.frontier[0]
		c.frontier = c.frontier[1:]

		if c.maxDepth >= 0 && entry.depth > c.maxDepth {
			continue
		}
		if c.visited[entry.url] {
			continue
		}
		if c.urlFilter != nil && !c.urlFilter(entry.url) {
			continue
		}

		c.visited[entry.url] = true
		c.collectedURLs = append(c.collectedURLs, entry.url)

		if c.onVisit != nil {
			c.onVisit(entry.url, entry.depth)
		}
		c.logger.Debug("visiting", "url", entry.url, "depth", entry.depth, "visited", len(c.visited))

		doc, err := c.fetcher.Fetch(ctx, entry.url)
		if err != nil || doc == nil {
			// Fetch failures skip the page but still count it as
			// visited; the crawl never aborts for one bad page.
			c.logger.Warn("fetch failed", "url", entry.url, "error", err)
			continue
		}

		if c.extractor != nil {
			meta := extractor.Metadata{Depth: entry.depth, URL: entry.url}
			records, err := c.extractor.Extract(entry.url, doc, meta)
			if err != nil {
				c.reportError(entry.url, err)
			} else {
				c.collected = append(c.collected, records...)
			}
		}

		for _, link := range doc.Links() {
			link = urlutil.Normalize(link)
			if c.shouldVisit(link, baseDomain) {
				c.frontier = append(c.frontier, frontierEntry{url: link, depth: entry.depth + 1})
			}
		}
	}

	result := c.snapshot()
	c.logger.Info("crawl complete",
		"visited", result.Stats.VisitedCount,
		"queued", result.Stats.QueuedCount,
		"records", result.Stats.ChunkCount,
	)

	return result, nil
}

// shouldVisit decides whether a discovered link is enqueued. The checks
// mirror the visit-time checks so that most rejected URLs never enter the
// frontier; the visited check is repeated at pop time because the same URL
// can be discovered twice before its first visit.
func (c *Crawler) shouldVisit(link, baseDomain string) bool {
	if c.visited[link] {
		return false
	}
	if !urlutil.IsValid(link) {
		return false
	}
	if c.stayWithinDomain && !urlutil.SameDomain(link, baseDomain) {
		return false
	}
	if c.urlFilter != nil && !c.urlFilter(link) {
		return false
	}
	return true
}

// reportError forwards an extraction failure to the observer, or logs it
// when no observer is configured.
func (c *Crawler) reportError(pageURL string, err error) {
	if c.onError != nil {
		c.onError(pageURL, err)
		return
	}
	c.logger.Warn("extraction failed", "url", pageURL, "error", err)
}

// snapshot builds an immutable Result from the current crawl state.
func (c *Crawler) snapshot() *Result {
	urls := make([]string, len(c.collectedURLs))
	copy(urls, c.collectedURLs)

	records := make([]model.Record, len(c.collected))
	copy(records, c.collected)

	return &Result{
		URLs:    urls,
		Records: records,
		Stats: Stats{
			VisitedCount:   len(c.visited),
			QueuedCount:    len(c.frontier),
			CollectedCount: len(urls),
			ChunkCount:     len(records),
		},
	}
}

// Reset clears the visited set, frontier, and collected results, allowing
// the Crawler to be reused for a new crawl.
func (c *Crawler) Reset() {
	c.visited = make(map[string]bool)
	c.frontier = nil
	c.collectedURLs = nil
	c.collected = nil
}
