package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ragcrawl/ragcrawl/internal/crawler"
	"github.com/ragcrawl/ragcrawl/internal/extractor"
	"github.com/ragcrawl/ragcrawl/internal/fetcher"
	"github.com/ragcrawl/ragcrawl/internal/model"
)

// ErrNoChunks is returned by ChunkStatistics when the session has not
// collected any chunks yet.
var ErrNoChunks = errors.New("no chunks collected")

// DefaultMaxPages caps a session crawl unless overridden.
const DefaultMaxPages = 100

// Session is the high-level entry point for RAG crawling. It wires a
// Crawler to the heading-aware chunker and keeps the collected chunks
// for querying and export.
type Session struct {
	chunkSize     int
	splitOversize bool
	delay         time.Duration
	timeout       time.Duration
	userAgent     string
	headers       map[string]string

	maxPages         int
	maxDepth         int
	stayWithinDomain bool
	urlFilter        func(string) bool
	onVisit          func(pageURL string, depth int)

	fetch  crawler.Fetcher
	logger *slog.Logger

	chunks []model.Chunk
}

// Option configures a Session.
type Option func(*Session)

// WithChunkSize sets the chunk size target in characters.
func WithChunkSize(size int) Option {
	return func(s *Session) {
		s.chunkSize = size
	}
}

// WithSplitOversize enables sentence-level splitting of blocks larger
// than the chunk size target.
func WithSplitOversize(split bool) Option {
	return func(s *Session) {
		s.splitOversize = split
	}
}

// WithDelay sets the politeness delay between fetches.
func WithDelay(d time.Duration) Option {
	return func(s *Session) {
		s.delay = d
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithUserAgent sets the User-Agent header for all fetches.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// WithHeaders sets additional headers for all fetches.
func WithHeaders(headers map[string]string) Option {
	return func(s *Session) {
		s.headers = headers
	}
}

// WithMaxPages caps the number of visited pages. Zero means unlimited.
func WithMaxPages(maxPages int) Option {
	return func(s *Session) {
		s.maxPages = maxPages
	}
}

// WithMaxDepth limits link hops from the start URL. Negative means
// unlimited.
func WithMaxDepth(depth int) Option {
	return func(s *Session) {
		s.maxDepth = depth
	}
}

// WithStayWithinDomain restricts the crawl to the start URL's domain.
func WithStayWithinDomain(stay bool) Option {
	return func(s *Session) {
		s.stayWithinDomain = stay
	}
}

// WithURLFilter sets a predicate applied to every URL.
func WithURLFilter(filter func(string) bool) Option {
	return func(s *Session) {
		s.urlFilter = filter
	}
}

// WithVisitHook sets a callback invoked for each visited page.
func WithVisitHook(onVisit func(pageURL string, depth int)) Option {
	return func(s *Session) {
		s.onVisit = onVisit
	}
}

// WithFetcher replaces the HTTP fetch collaborator. Tests use this to
// crawl without a network.
func WithFetcher(f crawler.Fetcher) Option {
	return func(s *Session) {
		s.fetch = f
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a Session with the given options.
func New(opts ...Option) *Session {
	s := &Session{
		chunkSize:        extractor.DefaultChunkSize,
		delay:            fetcher.DefaultDelay,
		timeout:          fetcher.DefaultTimeout,
		maxPages:         DefaultMaxPages,
		maxDepth:         -1,
		stayWithinDomain: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.fetch == nil {
		fopts := []fetcher.Option{
			fetcher.WithDelay(s.delay),
			fetcher.WithTimeout(s.timeout),
		}
		if s.userAgent != "" {
			fopts = append(fopts, fetcher.WithUserAgent(s.userAgent))
		}
		if len(s.headers) > 0 {
			fopts = append(fopts, fetcher.WithHeaders(s.headers))
		}
		s.fetch = fetcher.New(fopts...)
	}

	return s
}

// RAGStats summarizes the chunk output of one crawl.
type RAGStats struct {
	TotalChunks   int     `json:"total_chunks"`
	AvgChunkSize  float64 `json:"avg_chunk_size"`
	MinChunkSize  int     `json:"min_chunk_size"`
	MaxChunkSize  int     `json:"max_chunk_size"`
	ChunksPerPage float64 `json:"chunks_per_page"`
}

// CrawlResult is the outcome of one session crawl.
type CrawlResult struct {
	// URLs are the visited URLs in visit order.
	URLs []string `json:"urls"`

	// Chunks are the RAG chunks across all pages.
	Chunks []model.Chunk `json:"data"`

	// Stats are the traversal statistics.
	Stats crawler.Stats `json:"stats"`

	// RAGStats summarize the chunks. Nil when the crawl produced none.
	RAGStats *RAGStats `json:"rag_stats,omitempty"`
}

// Crawl runs a breadth-first crawl from startURL, chunking every page,
// and stores the chunks for later queries. A previous crawl's chunks are
// replaced.
func (s *Session) Crawl(ctx context.Context, startURL string) (*CrawlResult, error) {
	c := crawler.New(s.fetch, s.crawlerOptions()...)

	s.logger.Info("starting RAG crawl", "startURL", startURL)

	result, err := c.Crawl(ctx, startURL)
	if err != nil {
		if result == nil {
			return nil, fmt.Errorf("session crawl: %w", err)
		}
		// Cancellation returns the partial snapshot.
		s.chunks = chunksOf(result.Records)
		return s.buildResult(result), err
	}

	s.chunks = chunksOf(result.Records)

	s.logger.Info("RAG crawl complete",
		"chunks", len(s.chunks),
		"pages", result.Stats.VisitedCount,
	)

	return s.buildResult(result), nil
}

// ExtractFromPage fetches and chunks a single page without traversal.
// The chunks are returned but not added to the session's collection.
func (s *Session) ExtractFromPage(ctx context.Context, pageURL string) ([]model.Chunk, error) {
	doc, err := s.fetch.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract from page: %w", err)
	}

	records, err := s.newExtractor().Extract(pageURL, doc, extractor.Metadata{Depth: 0, URL: pageURL})
	if err != nil {
		return nil, fmt.Errorf("extract from page: %w", err)
	}
	return chunksOf(records), nil
}

// Chunks returns all chunks collected by the last crawl.
func (s *Session) Chunks() []model.Chunk {
	out := make([]model.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// ChunksByPage returns the chunks extracted from one page URL.
func (s *Session) ChunksByPage(pageURL string) []model.Chunk {
	var out []model.Chunk
	for _, c := range s.chunks {
		if c.URL == pageURL {
			out = append(out, c)
		}
	}
	return out
}

// ChunksByTopic returns the chunks whose text or title contains topic,
// case-insensitively.
func (s *Session) ChunksByTopic(topic string) []model.Chunk {
	topic = strings.ToLower(topic)

	var out []model.Chunk
	for _, c := range s.chunks {
		if strings.Contains(strings.ToLower(c.Text), topic) ||
			strings.Contains(strings.ToLower(c.Title), topic) {
			out = append(out, c)
		}
	}
	return out
}

// Statistics describes the collected chunks in aggregate.
type Statistics struct {
	TotalChunks    int     `json:"total_chunks"`
	UniquePages    int     `json:"unique_pages"`
	AvgChunkSize   float64 `json:"avg_chunk_size"`
	MinChunkSize   int     `json:"min_chunk_size"`
	MaxChunkSize   int     `json:"max_chunk_size"`
	ChunksWithH1   int     `json:"chunks_with_h1"`
	ChunksWithH2   int     `json:"chunks_with_h2"`
	ChunksWithH3   int     `json:"chunks_with_h3"`
	AvgTitleLength float64 `json:"avg_title_length"`
}

// ChunkStatistics aggregates the collected chunks. It returns
// ErrNoChunks when the session has nothing collected.
func (s *Session) ChunkStatistics() (*Statistics, error) {
	if len(s.chunks) == 0 {
		return nil, ErrNoChunks
	}

	stats := &Statistics{
		TotalChunks:  len(s.chunks),
		MinChunkSize: s.chunks[0].CharCount,
	}

	pages := make(map[string]bool)
	totalSize := 0
	totalTitleLen := 0
	for _, c := range s.chunks {
		pages[c.URL] = true
		totalSize += c.CharCount
		totalTitleLen += len(c.Title)

		if c.CharCount < stats.MinChunkSize {
			stats.MinChunkSize = c.CharCount
		}
		if c.CharCount > stats.MaxChunkSize {
			stats.MaxChunkSize = c.CharCount
		}
		if c.H1 != "" {
			stats.ChunksWithH1++
		}
		if c.H2 != "" {
			stats.ChunksWithH2++
		}
		if c.H3 != "" {
			stats.ChunksWithH3++
		}
	}

	stats.UniquePages = len(pages)
	stats.AvgChunkSize = float64(totalSize) / float64(len(s.chunks))
	stats.AvgTitleLength = float64(totalTitleLen) / float64(len(s.chunks))

	return stats, nil
}

// ExportLangChain reshapes the collected chunks into LangChain document
// form.
func (s *Session) ExportLangChain() []model.LangChainDocument {
	return model.ToLangChain(s.chunks)
}

// ExportLlamaIndex reshapes the collected chunks into LlamaIndex node
// form.
func (s *Session) ExportLlamaIndex() []model.LlamaIndexNode {
	return model.ToLlamaIndex(s.chunks)
}

func (s *Session) newExtractor() *extractor.RAG {
	return extractor.NewRAG(
		extractor.WithChunkSize(s.chunkSize),
		extractor.WithSplitOversize(s.splitOversize),
	)
}

func (s *Session) crawlerOptions() []crawler.Option {
	opts := []crawler.Option{
		crawler.WithExtractor(s.newExtractor()),
		crawler.WithMaxPages(s.maxPages),
		crawler.WithMaxDepth(s.maxDepth),
		crawler.WithStayWithinDomain(s.stayWithinDomain),
		crawler.WithLogger(s.logger),
	}
	if s.urlFilter != nil {
		opts = append(opts, crawler.WithURLFilter(s.urlFilter))
	}
	if s.onVisit != nil {
		opts = append(opts, crawler.WithVisitHook(s.onVisit))
	}
	return opts
}

func (s *Session) buildResult(result *crawler.Result) *CrawlResult {
	out := &CrawlResult{
		URLs:   result.URLs,
		Chunks: s.Chunks(),
		Stats:  result.Stats,
	}
	if len(s.chunks) > 0 {
		out.RAGStats = ragStats(s.chunks, result.Stats.VisitedCount)
	}
	return out
}

func ragStats(chunks []model.Chunk, visited int) *RAGStats {
	stats := &RAGStats{
		TotalChunks:  len(chunks),
		MinChunkSize: chunks[0].CharCount,
	}

	total := 0
	for _, c := range chunks {
		total += c.CharCount
		if c.CharCount < stats.MinChunkSize {
			stats.MinChunkSize = c.CharCount
		}
		if c.CharCount > stats.MaxChunkSize {
			stats.MaxChunkSize = c.CharCount
		}
	}

	stats.AvgChunkSize = float64(total) / float64(len(chunks))
	if visited > 0 {
		stats.ChunksPerPage = float64(len(chunks)) / float64(visited)
	}
	return stats
}

// chunksOf filters crawl records down to RAG chunks.
func chunksOf(records []model.Record) []model.Chunk {
	var out []model.Chunk
	for _, r := range records {
		if c, ok := r.(model.Chunk); ok {
			out = append(out, c)
		}
	}
	return out
}
