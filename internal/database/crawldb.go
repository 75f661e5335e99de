package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ragcrawl/ragcrawl/internal/crawler"
	"github.com/ragcrawl/ragcrawl/internal/model"
	"github.com/ragcrawl/ragcrawl/internal/session"
)

// ChunkDB provides SQLite-based storage for crawl sessions and their
// chunks. It manages connection pooling and provides methods for saving
// and querying crawl output.
//
// Design decision: We use a single database file for all sessions rather
// than one file per crawl. This lets queries span sessions (e.g. "all
// chunks ever collected for this page") and simplifies backup/restore.
type ChunkDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ChunkDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ChunkDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ChunkDB, error) {
	dbPath := filepath.Join(dbDir, "ragcrawl.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY errors during chunk batch inserts.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &ChunkDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *ChunkDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *ChunkDB) createTables() error {
	schema := `
	-- Sessions store one row per completed crawl
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		start_url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		visited_count INTEGER NOT NULL DEFAULT 0,
		queued_count INTEGER NOT NULL DEFAULT 0,
		collected_count INTEGER NOT NULL DEFAULT 0,
		chunk_count INTEGER NOT NULL DEFAULT 0,
		rag_stats TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_start_url ON sessions(start_url);
	CREATE INDEX IF NOT EXISTS idx_sessions_timestamp ON sessions(timestamp);

	-- Chunks store the extracted content, one row per chunk
	CREATE TABLE IF NOT EXISTS chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		chunk_id TEXT NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		page_title TEXT,
		h1 TEXT,
		h2 TEXT,
		h3 TEXT,
		text TEXT NOT NULL,
		source TEXT,
		depth INTEGER NOT NULL DEFAULT 0,
		char_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_session ON chunks(session_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_url ON chunks(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SessionRecord represents a stored crawl session.
type SessionRecord struct {
	// ID is the UUID assigned when the session was saved.
	ID string

	// StartURL is the crawl's normalized start URL.
	StartURL string

	// Timestamp is when the session was saved.
	Timestamp time.Time

	// Stats are the traversal statistics.
	Stats crawler.Stats

	// RAGStats summarize the chunks. Nil when the crawl produced none.
	RAGStats *session.RAGStats
}

// SaveCrawl stores a crawl result and its chunks in one transaction and
// returns the new session ID.
func (cdb *ChunkDB) SaveCrawl(ctx context.Context, startURL string, result *session.CrawlResult) (string, error) {
	sessionID := uuid.NewString()

	var ragJSON []byte
	if result.RAGStats != nil {
		var err error
		ragJSON, err = json.Marshal(result.RAGStats)
		if err != nil {
			return "", fmt.Errorf("failed to serialize rag stats: %w", err)
		}
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after Commit is a no-op

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO sessions (id, start_url, visited_count, queued_count, collected_count, chunk_count, rag_stats)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		sessionID,
		startURL,
		result.Stats.VisitedCount,
		result.Stats.QueuedCount,
		result.Stats.CollectedCount,
		result.Stats.ChunkCount,
		string(ragJSON),
	); err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	for _, c := range result.Chunks {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO chunks (session_id, chunk_id, url, title, page_title, h1, h2, h3, text, source, depth, char_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			sessionID,
			c.ChunkID,
			c.URL,
			c.Title,
			c.PageTitle,
			c.H1,
			c.H2,
			c.H3,
			c.Text,
			c.Source,
			c.Depth,
			c.CharCount,
		); err != nil {
			return "", fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit session: %w", err)
	}

	return sessionID, nil
}

// GetSession retrieves a session by ID. It returns nil without error when
// the session does not exist.
func (cdb *ChunkDB) GetSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	query := `
	SELECT id, start_url, timestamp, visited_count, queued_count, collected_count, chunk_count, rag_stats
	FROM sessions
	WHERE id = ?
	`

	record, err := scanSession(cdb.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return record, nil
}

// ListSessions returns all stored sessions, most recent first.
func (cdb *ChunkDB) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	query := `
	SELECT id, start_url, timestamp, visited_count, queued_count, collected_count, chunk_count, rag_stats
	FROM sessions
	ORDER BY timestamp DESC, id
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var results []SessionRecord
	for rows.Next() {
		record, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		results = append(results, *record)
	}

	return results, rows.Err()
}

// LatestSession returns the most recent session for a start URL, or nil
// when none exists.
func (cdb *ChunkDB) LatestSession(ctx context.Context, startURL string) (*SessionRecord, error) {
	query := `
	SELECT id, start_url, timestamp, visited_count, queued_count, collected_count, chunk_count, rag_stats
	FROM sessions
	WHERE start_url = ?
	ORDER BY timestamp DESC
	LIMIT 1
	`

	record, err := scanSession(cdb.db.QueryRowContext(ctx, query, startURL))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}
	return record, nil
}

// ChunksBySession returns all chunks of one session in insertion order.
func (cdb *ChunkDB) ChunksBySession(ctx context.Context, sessionID string) ([]model.Chunk, error) {
	query := chunkSelect + ` WHERE session_id = ? ORDER BY id`
	return cdb.queryChunks(ctx, query, sessionID)
}

// ChunksByPage returns the chunks a session extracted from one page URL.
func (cdb *ChunkDB) ChunksByPage(ctx context.Context, sessionID, pageURL string) ([]model.Chunk, error) {
	query := chunkSelect + ` WHERE session_id = ? AND url = ? ORDER BY id`
	return cdb.queryChunks(ctx, query, sessionID, pageURL)
}

// ChunksByTopic returns a session's chunks whose text or title contains
// the topic, case-insensitively.
func (cdb *ChunkDB) ChunksByTopic(ctx context.Context, sessionID, topic string) ([]model.Chunk, error) {
	// SQLite LIKE is case-insensitive for ASCII by default.
	pattern := "%" + topic + "%"
	query := chunkSelect + ` WHERE session_id = ? AND (text LIKE ? OR title LIKE ?) ORDER BY id`
	return cdb.queryChunks(ctx, query, sessionID, pattern, pattern)
}

const chunkSelect = `
SELECT chunk_id, url, title, page_title, h1, h2, h3, text, source, depth, char_count
FROM chunks
`

func (cdb *ChunkDB) queryChunks(ctx context.Context, query string, args ...any) ([]model.Chunk, error) {
	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []model.Chunk
	for rows.Next() {
		var c model.Chunk
		if err := rows.Scan(
			&c.ChunkID,
			&c.URL,
			&c.Title,
			&c.PageTitle,
			&c.H1,
			&c.H2,
			&c.H3,
			&c.Text,
			&c.Source,
			&c.Depth,
			&c.CharCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		results = append(results, c)
	}

	return results, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*SessionRecord, error) {
	var record SessionRecord
	var timestamp string
	var ragJSON sql.NullString

	if err := row.Scan(
		&record.ID,
		&record.StartURL,
		&timestamp,
		&record.Stats.VisitedCount,
		&record.Stats.QueuedCount,
		&record.Stats.CollectedCount,
		&record.Stats.ChunkCount,
		&ragJSON,
	); err != nil {
		return nil, err
	}

	record.Timestamp = parseTimestamp(timestamp)

	if ragJSON.Valid && ragJSON.String != "" {
		var stats session.RAGStats
		if err := json.Unmarshal([]byte(ragJSON.String), &stats); err == nil {
			record.RAGStats = &stats
		}
	}

	return &record, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
