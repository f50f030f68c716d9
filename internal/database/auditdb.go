package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/a11yscan/a11yscan/internal/model"
)

// AuditDB provides SQLite-based storage for audit run history.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all audited URLs
// rather than one file per site. This keeps history queries across
// sites simple and makes backup a single-file copy.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
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

// Open opens or creates an AuditDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, "a11yscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
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

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Audit runs store one row per audited URL and device profile
	CREATE TABLE IF NOT EXISTS audit_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		profile TEXT NOT NULL,
		standards TEXT NOT NULL,
		kind TEXT NOT NULL,
		errors INTEGER DEFAULT 0,
		warnings INTEGER DEFAULT 0,
		notices INTEGER DEFAULT 0,
		total_issues INTEGER DEFAULT 0,
		elapsed_ms INTEGER DEFAULT 0,
		ran_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		outcome_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_url ON audit_runs(url);
	CREATE INDEX IF NOT EXISTS idx_runs_kind ON audit_runs(kind);
	CREATE INDEX IF NOT EXISTS idx_runs_ran_at ON audit_runs(ran_at);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveOutcome stores an audit outcome and returns its database ID.
// The outcome is stored both as queryable columns and as full JSON,
// so history listings never need to parse the document.
func (adb *AuditDB) SaveOutcome(ctx context.Context, outcome *model.AuditOutcome, standards []model.Standard) (int64, error) {
	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize outcome: %w", err)
	}

	var errors, warnings, notices, total int
	if outcome.Summary != nil {
		errors = outcome.Summary.Errors
		warnings = outcome.Summary.Warnings
		notices = outcome.Summary.Notices
		total = outcome.Summary.TotalIssues
	}

	tokens := make([]string, len(standards))
	for i, s := range standards {
		tokens[i] = s.String()
	}

	query := `
	INSERT INTO audit_runs (url, profile, standards, kind, errors, warnings, notices, total_issues, elapsed_ms, ran_at, outcome_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := adb.db.ExecContext(ctx, query,
		outcome.URL,
		outcome.Profile.String(),
		strings.Join(tokens, ","),
		outcome.Kind.String(),
		errors,
		warnings,
		notices,
		total,
		outcome.Elapsed.Milliseconds(),
		outcome.RanAt.UTC().Format("2006-01-02 15:04:05"),
		string(outcomeJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save audit run: %w", err)
	}

	return result.LastInsertId()
}

// RunMetadata contains summary information about a stored audit run.
// This is used for history listings without loading the full outcome.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// URL is the audited page address.
	URL string

	// Profile is the device profile token used for the run.
	Profile string

	// Standards is the comma-separated list of standards audited.
	Standards string

	// Kind is the outcome kind token ("ok", "timeout", ...).
	Kind string

	// Errors, Warnings, Notices and TotalIssues are the issue counts.
	Errors      int
	Warnings    int
	Notices     int
	TotalIssues int

	// RanAt is when the audit was performed.
	RanAt time.Time
}

// ListRuns retrieves run metadata, newest first. If url is non-empty
// only runs for that URL are returned. limit <= 0 means no limit.
func (adb *AuditDB) ListRuns(ctx context.Context, url string, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, url, profile, standards, kind, errors, warnings, notices, total_issues, ran_at
	FROM audit_runs
	WHERE 1=1
	`
	args := make([]any, 0)

	if url != "" {
		query += " AND url = ?"
		args = append(args, url)
	}

	query += " ORDER BY ran_at DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var ranAt string

		if err := rows.Scan(
			&meta.ID,
			&meta.URL,
			&meta.Profile,
			&meta.Standards,
			&meta.Kind,
			&meta.Errors,
			&meta.Warnings,
			&meta.Notices,
			&meta.TotalIssues,
			&ranAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.RanAt = parseTimestamp(ranAt)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetOutcomeByID retrieves a stored outcome by its database ID.
// Returns nil without error when no run has that ID.
func (adb *AuditDB) GetOutcomeByID(ctx context.Context, id int64) (*model.AuditOutcome, error) {
	query := `
	SELECT outcome_json FROM audit_runs
	WHERE id = ?
	`

	var outcomeJSON string
	err := adb.db.QueryRowContext(ctx, query, id).Scan(&outcomeJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit run: %w", err)
	}

	var outcome model.AuditOutcome
	if err := json.Unmarshal([]byte(outcomeJSON), &outcome); err != nil {
		return nil, fmt.Errorf("failed to parse outcome: %w", err)
	}

	return &outcome, nil
}

// GetLatestOutcome retrieves the most recent outcome for a URL.
// Returns nil without error when the URL has never been audited.
func (adb *AuditDB) GetLatestOutcome(ctx context.Context, url string) (*model.AuditOutcome, error) {
	query := `
	SELECT outcome_json FROM audit_runs
	WHERE url = ?
	ORDER BY ran_at DESC, id DESC
	LIMIT 1
	`

	var outcomeJSON string
	err := adb.db.QueryRowContext(ctx, query, url).Scan(&outcomeJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit run: %w", err)
	}

	var outcome model.AuditOutcome
	if err := json.Unmarshal([]byte(outcomeJSON), &outcome); err != nil {
		return nil, fmt.Errorf("failed to parse outcome: %w", err)
	}

	return &outcome, nil
}

// ListAuditedURLs returns the distinct URLs with stored runs.
func (adb *AuditDB) ListAuditedURLs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT url FROM audit_runs
	ORDER BY url
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
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
