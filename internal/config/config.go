package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout is the per-request HTTP timeout. 10 seconds covers
	// slow documentation hosts without letting one dead page stall a
	// whole crawl.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxDepth disables the depth cap. Most documentation sites
	// are shallow enough that the page cap is the effective limit.
	DefaultMaxDepth = -1

	// DefaultMaxPages is the maximum number of pages crawled per site.
	// This prevents runaway crawling on large or infinitely-generating
	// sites. Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 50

	// DefaultChunkSize is the chunk size target in characters. 500
	// characters keeps chunks inside typical embedding-model context
	// windows while preserving enough surrounding prose to be useful.
	DefaultChunkSize = 500

	// DefaultWorkers is the number of concurrent crawls when processing
	// multiple targets. Each worker runs a full independent crawl, so a
	// small number is enough to keep the network busy.
	DefaultWorkers = 3

	// AppName is the application name used for XDG directory paths.
	AppName = "ragcrawl"

	// DefaultCrawlDelay is the delay between requests during crawling.
	// This is a politeness setting; 1 second is conservative and
	// respectful of server resources. Can be adjusted via --delay.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultUserAgent identifies ragcrawl in HTTP requests. A
	// descriptive User-Agent lets operators identify crawler traffic in
	// their logs.
	DefaultUserAgent = "ragcrawl/1.0 (+https://github.com/ragcrawl/ragcrawl)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Extraction modes selectable via the --mode CLI flag.
const (
	// ModeRAG extracts heading-aware text chunks for retrieval indexes.
	ModeRAG = "rag"

	// ModeBasic extracts one lightweight metadata summary per page.
	ModeBasic = "basic"
)

// Config holds all configuration options for ragcrawl.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Timeout is the HTTP timeout for each page fetch.
	// This applies to individual requests, not the overall crawl duration.
	Timeout time.Duration

	// MaxDepth is the maximum number of link hops from the start URL.
	// Depth 0 means only fetch the starting page; negative means unlimited.
	MaxDepth int

	// MaxPages is the maximum number of pages to crawl per site.
	// A value of 0 means unlimited.
	MaxPages int

	// ChunkSize is the chunk size target in characters for RAG extraction.
	ChunkSize int

	// SplitOversize enables sentence-level splitting of single content
	// blocks larger than ChunkSize.
	SplitOversize bool

	// Mode selects the extractor: ModeRAG (default) or ModeBasic.
	Mode string

	// StayWithinDomain restricts the crawl to the start URL's domain.
	StayWithinDomain bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// Workers is the number of concurrent crawls when processing multiple
	// targets. Each target always gets its own session; Workers only
	// bounds how many run at once.
	Workers int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .ragcrawl in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file. This is populated by LoadConfigFile.
	SiteConfigs *File

	// JSONReport enables JSON output of the collected chunks.
	// Mutually exclusive with CSVReport and MarkdownReport.
	JSONReport bool

	// CSVReport enables CSV output of the collected chunks.
	// Mutually exclusive with JSONReport and MarkdownReport.
	CSVReport bool

	// MarkdownReport enables a GitHub Flavored Markdown crawl summary.
	// Mutually exclusive with JSONReport and CSVReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Targets is the list of start URLs to crawl.
	// Must contain at least one http or https URL.
	Targets []string

	// DBDir is the directory path for storing the SQLite database.
	// When set, crawl results are saved to the database for later querying.
	// When empty, crawl results are not persisted.
	// Defaults to the XDG data directory (~/.local/share/ragcrawl on Linux).
	DBDir string

	// SaveToDB indicates whether to save crawl results to the database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool

	// CrawlDelay is the delay between HTTP requests during crawling.
	// This is a politeness setting to avoid overwhelming sites.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, chunk
// size). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:          DefaultTimeout,
		MaxDepth:         DefaultMaxDepth,
		MaxPages:         DefaultMaxPages,
		ChunkSize:        DefaultChunkSize,
		Mode:             ModeRAG,
		StayWithinDomain: true,
		Workers:          DefaultWorkers,
		CrawlDelay:       DefaultCrawlDelay,
		UserAgent:        DefaultUserAgent,
		MaxBodySize:      DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for ragcrawl.
// On Linux: ~/.local/share/ragcrawl
// On macOS: ~/Library/Application Support/ragcrawl
// On Windows: %LOCALAPPDATA%\ragcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ragcrawl.
// On Linux: ~/.config/ragcrawl
// On macOS: ~/Library/Application Support/ragcrawl
// On Windows: %APPDATA%\ragcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target to crawl
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// ChunkSize must be positive; zero would flush a chunk per block
	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}

	// Workers must be positive; zero would mean no crawling
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.Mode != ModeRAG && c.Mode != ModeBasic {
		return ErrInvalidMode
	}

	// Only one report format can be selected
	formats := 0
	for _, enabled := range []bool{c.JSONReport, c.CSVReport, c.MarkdownReport} {
		if enabled {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
