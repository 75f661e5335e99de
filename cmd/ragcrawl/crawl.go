package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/ragcrawl/ragcrawl/internal/config"
	"github.com/ragcrawl/ragcrawl/internal/crawler"
	"github.com/ragcrawl/ragcrawl/internal/database"
	"github.com/ragcrawl/ragcrawl/internal/extractor"
	"github.com/ragcrawl/ragcrawl/internal/fetcher"
	ragcrawllog "github.com/ragcrawl/ragcrawl/internal/log"
	"github.com/ragcrawl/ragcrawl/internal/pipeline"
	"github.com/ragcrawl/ragcrawl/internal/report"
	"github.com/ragcrawl/ragcrawl/internal/session"
	"github.com/ragcrawl/ragcrawl/internal/urlutil"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [start-url]",
		Short: "Crawl a website and extract RAG-ready text chunks",
		Long: `Crawl fetches a website breadth-first starting from the given URL and
converts each page into heading-aware text chunks for retrieval indexing.

The crawl stays within the start URL's domain by default and stops when
the page cap, the depth cap, or the frontier is exhausted. Between
requests a fixed politeness delay is applied.

Examples:
  # Crawl a documentation site with defaults
  ragcrawl crawl https://docs.example.com

  # Crawl several sites concurrently
  ragcrawl crawl -w 3 https://docs.a.com https://docs.b.com

  # Larger chunks, deeper crawl, JSON output
  ragcrawl crawl --chunk-size 800 -d 4 --json https://docs.example.com

  # Per-page metadata summaries instead of chunks
  ragcrawl crawl --mode basic https://docs.example.com

  # Use a custom configuration file
  ragcrawl crawl -c myconfig.yaml https://docs.example.com

Configuration file (.ragcrawl) example:
  sites:
    docs.example.com:
      chunkSize: 800
      maxPages: 200
      excludePatterns:
        - "/changelog/*"
        - "*.pdf"
  defaults:
    depth: 3`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link hops from the start URL (negative means unlimited)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per site (0 means unlimited)")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Delay between requests")
	cmd.Flags().Bool("stay-within-domain", true,
		"Restrict the crawl to the start URL's domain")

	// Extraction flags
	cmd.Flags().String("mode", config.ModeRAG,
		"Extraction mode: rag (text chunks) or basic (page summaries)")
	cmd.Flags().Int("chunk-size", config.DefaultChunkSize,
		"Chunk size target in characters for RAG extraction")
	cmd.Flags().Bool("split-oversize", false,
		"Split single content blocks larger than the chunk size")

	// Concurrency flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent crawls when multiple start URLs are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .ragcrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --csv and --markdown)")
	cmd.Flags().Bool("csv", false,
		"Output chunks as CSV (mutually exclusive with --json and --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json and --csv)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Database flags
	cmd.Flags().Bool("save-db", true,
		"Save crawl results to the local SQLite database")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction
	logger := ragcrawllog.NewRedactingLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.StayWithinDomain, err = cmd.Flags().GetBool("stay-within-domain")
	if err != nil {
		return nil, err
	}

	cfg.Mode, err = cmd.Flags().GetString("mode")
	if err != nil {
		return nil, err
	}

	cfg.ChunkSize, err = cmd.Flags().GetInt("chunk-size")
	if err != nil {
		return nil, err
	}

	cfg.SplitOversize, err = cmd.Flags().GetBool("split-oversize")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.CSVReport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Basic mode emits the raw per-page summaries as JSON; the chunk
	// report formats do not apply to it.
	if cfg.Mode == config.ModeBasic && (cfg.CSVReport || cfg.MarkdownReport) {
		return nil, errors.New("--csv and --markdown require --mode rag")
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save-db")
	if err != nil {
		return nil, err
	}

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Get positional arguments (start URLs)
	cfg.Targets = args

	return cfg, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more start URLs as arguments)")
	}

	logger.Info("starting crawl",
		"targets", cfg.Targets,
		"mode", cfg.Mode,
		"workers", cfg.Workers,
		"saveToDB", cfg.SaveToDB,
	)

	// Validate and normalize all start URLs up front
	for i, target := range cfg.Targets {
		normalized := urlutil.Normalize(target)
		if !urlutil.IsValid(normalized) {
			return fmt.Errorf("invalid start URL %q: %w", target, crawler.ErrInvalidStartURL)
		}
		cfg.Targets[i] = normalized
	}

	// Basic mode saves nothing; page summaries carry too little to index.
	if cfg.Mode == config.ModeBasic {
		return runBasicCrawl(ctx, cfg, logger)
	}

	// Open database connection if saving is enabled
	var db *database.ChunkDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Use the batch processor for parallel crawling if multiple targets
	if len(cfg.Targets) > 1 && cfg.Workers > 1 {
		return runBatchCrawl(ctx, cfg, db, logger)
	}

	// Single target or sequential crawling
	return runSequentialCrawl(ctx, cfg, db, logger)
}

// runSequentialCrawl crawls targets one at a time.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, db *database.ChunkDB, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Get site-specific configuration
		siteConfig := getSiteConfig(cfg, target)

		bar := newProgressBar(effectiveMaxPages(cfg, siteConfig), "crawling "+hostOf(target))
		sess := createSessionForTarget(cfg, siteConfig, logger, func(string, int) {
			_ = bar.Add(1) //nolint:errcheck // Progress display is best effort
		})

		fmt.Printf("Crawling %s...\n", target)
		startTime := time.Now()

		result, err := sess.Crawl(ctx, target)
		_ = bar.Finish() //nolint:errcheck // Progress display is best effort
		fmt.Println()

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Error("crawl failed", "target", ragcrawllog.RedactURL(target), "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", target, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Crawl completed in %s (%d pages, %d chunks)\n\n",
			elapsed.Round(time.Millisecond), result.Stats.VisitedCount, result.Stats.ChunkCount)

		// Generate and output report
		if err := outputReport(cfg, target, result); err != nil {
			logger.Error("report failed", "target", ragcrawllog.RedactURL(target), "error", err)
		}

		// Save to database if enabled
		if err := saveCrawl(ctx, db, target, result, logger); err != nil {
			logger.Error("failed to save crawl", "target", ragcrawllog.RedactURL(target), "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple targets concurrently using BatchProcessor.
func runBatchCrawl(ctx context.Context, cfg *config.Config, db *database.ChunkDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.Workers)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch processing uses default site config only; site-specific configs (headers, depth, patterns) are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use sequential mode (--workers 1) to apply per-site settings.\n\n")
	}

	// Create batch processor with session factory
	bp := pipeline.NewBatchProcessor(
		func() *session.Session {
			// Batch targets share the default site config; per-target
			// sessions would need a factory that takes the target.
			var siteConfig config.SiteConfig
			if cfg.SiteConfigs != nil {
				siteConfig = cfg.SiteConfigs.Defaults
			}
			return createSessionForTarget(cfg, siteConfig, logger, nil)
		},
		pipeline.WithConcurrency(cfg.Workers),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(result pipeline.TargetResult, index int) {
		mu.Lock()
		defer mu.Unlock()

		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Crawl failed: %s: %v\n",
				index+1, len(cfg.Targets), result.StartURL, result.Err)
			return
		}

		fmt.Printf("[%d/%d] Crawl completed: %s (%d pages, %d chunks)\n",
			index+1, len(cfg.Targets), result.StartURL,
			result.Result.Stats.VisitedCount, result.Result.Stats.ChunkCount)

		// Generate and output report
		if err := outputReport(cfg, result.StartURL, result.Result); err != nil {
			logger.Error("report failed", "target", ragcrawllog.RedactURL(result.StartURL), "error", err)
		}

		// Save to database if enabled
		if err := saveCrawl(ctx, db, result.StartURL, result.Result, logger); err != nil {
			logger.Error("failed to save crawl", "target", ragcrawllog.RedactURL(result.StartURL), "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// runBasicCrawl crawls targets in basic mode, emitting one metadata
// summary per page as JSON.
func runBasicCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		siteConfig := getSiteConfig(cfg, target)

		crawlOpts := []crawler.Option{
			crawler.WithExtractor(extractor.NewBasic()),
			crawler.WithMaxDepth(effectiveDepth(cfg, siteConfig)),
			crawler.WithMaxPages(effectiveMaxPages(cfg, siteConfig)),
			crawler.WithStayWithinDomain(cfg.StayWithinDomain),
			crawler.WithLogger(logger),
		}
		if filter := patternFilter(siteConfig); filter != nil {
			crawlOpts = append(crawlOpts, crawler.WithURLFilter(filter))
		}

		c := crawler.New(newFetcher(cfg, siteConfig), crawlOpts...)

		fmt.Printf("Crawling %s...\n", target)
		result, err := c.Crawl(ctx, target)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Error("crawl failed", "target", ragcrawllog.RedactURL(target), "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", target, err)
			continue
		}

		output, closeOutput, err := openReportOutput(cfg)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(result)
		closeOutput()
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	}

	return nil
}

// getSiteConfig returns the site-specific configuration for a target URL.
// Falls back to defaults if no site-specific config exists.
func getSiteConfig(cfg *config.Config, target string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	return cfg.SiteConfigs.GetSiteConfig(hostOf(target))
}

// hostOf returns the host portion of a URL, or the URL itself when it
// does not parse.
func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return target
	}
	return u.Host
}

// effectiveDepth returns the crawl depth with site overrides applied.
func effectiveDepth(cfg *config.Config, siteConfig config.SiteConfig) int {
	if siteConfig.Depth != 0 {
		return siteConfig.Depth
	}
	return cfg.MaxDepth
}

// effectiveMaxPages returns the page cap with site overrides applied.
func effectiveMaxPages(cfg *config.Config, siteConfig config.SiteConfig) int {
	if siteConfig.MaxPages != 0 {
		return siteConfig.MaxPages
	}
	return cfg.MaxPages
}

// effectiveChunkSize returns the chunk size with site overrides applied.
func effectiveChunkSize(cfg *config.Config, siteConfig config.SiteConfig) int {
	if siteConfig.ChunkSize != 0 {
		return siteConfig.ChunkSize
	}
	return cfg.ChunkSize
}

// patternFilter builds a URL filter from the site's include/exclude
// patterns, or nil when no patterns are configured.
func patternFilter(siteConfig config.SiteConfig) func(string) bool {
	if len(siteConfig.IncludePatterns) == 0 && len(siteConfig.ExcludePatterns) == 0 {
		return nil
	}
	return crawler.PatternFilter(siteConfig.IncludePatterns, siteConfig.ExcludePatterns)
}

// newFetcher builds the HTTP fetch client for a target.
func newFetcher(cfg *config.Config, siteConfig config.SiteConfig) *fetcher.Client {
	opts := []fetcher.Option{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithDelay(cfg.CrawlDelay),
		fetcher.WithUserAgent(cfg.UserAgent),
	}
	if cfg.MaxBodySize > 0 {
		opts = append(opts, fetcher.WithMaxBodySize(cfg.MaxBodySize))
	}
	if len(siteConfig.Headers) > 0 {
		opts = append(opts, fetcher.WithHeaders(siteConfig.Headers))
	}
	return fetcher.New(opts...)
}

// createSessionForTarget creates a crawl session with the given configuration.
func createSessionForTarget(cfg *config.Config, siteConfig config.SiteConfig, logger *slog.Logger, onVisit func(string, int)) *session.Session {
	opts := []session.Option{
		session.WithFetcher(newFetcher(cfg, siteConfig)),
		session.WithChunkSize(effectiveChunkSize(cfg, siteConfig)),
		session.WithSplitOversize(cfg.SplitOversize),
		session.WithMaxDepth(effectiveDepth(cfg, siteConfig)),
		session.WithMaxPages(effectiveMaxPages(cfg, siteConfig)),
		session.WithStayWithinDomain(cfg.StayWithinDomain),
		session.WithLogger(logger),
	}

	if filter := patternFilter(siteConfig); filter != nil {
		opts = append(opts, session.WithURLFilter(filter))
	}
	if onVisit != nil {
		opts = append(opts, session.WithVisitHook(onVisit))
	}

	return session.New(opts...)
}

// newProgressBar creates a per-page progress bar written to stderr so it
// never mixes with report output on stdout. A zero page cap means the
// total is unknown; the bar degrades to a spinner.
func newProgressBar(maxPages int, description string) *progressbar.ProgressBar {
	if maxPages <= 0 {
		maxPages = -1
	}
	return progressbar.NewOptions(maxPages,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// openReportOutput resolves the report destination. The returned close
// function is a no-op for stdout.
func openReportOutput(cfg *config.Config) (*os.File, func(), error) {
	if cfg.ReportFile == "" {
		return os.Stdout, func() {}, nil
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, startURL string, result *session.CrawlResult) error {
	output, closeOutput, err := openReportOutput(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	crawlReport := report.NewCrawlReport(startURL, result)

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.CSVReport:
		writer = report.NewCSVWriter(output)
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithShowPages(true))
	}

	_, err = writer.Write(crawlReport)
	return err
}

// saveCrawl saves the crawl result to the database if enabled.
// If db is nil, this function is a no-op.
func saveCrawl(ctx context.Context, db *database.ChunkDB, startURL string, result *session.CrawlResult, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	sessionID, err := db.SaveCrawl(ctx, startURL, result)
	if err != nil {
		return fmt.Errorf("failed to save crawl: %w", err)
	}

	logger.Info("crawl saved to database",
		"target", ragcrawllog.RedactURL(startURL),
		"sessionID", sessionID,
	)
	return nil
}
