package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/latestver/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "latestver.db"

// timeLayout stores timestamps in UTC with a fixed width so that they sort
// lexically.
const timeLayout = "2006-01-02 15:04:05.000000000"

// HistoryDB stores resolutions in SQLite.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// ReadOnlyOptions returns options for reading an existing history.
func ReadOnlyOptions() Options {
	return Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	}
}

// ErrNotFound is returned by Open when the database does not exist and
// CreateIfNotExists is false.
var ErrNotFound = errors.New("history database not found")

// Open opens or creates a HistoryDB in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per resolution; the full record is kept as JSON
	CREATE TABLE IF NOT EXISTS resolutions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		resolution_id TEXT NOT NULL UNIQUE,
		target TEXT NOT NULL,
		url TEXT NOT NULL,
		latest TEXT,
		artifact_url TEXT,
		content_digest TEXT,
		version_count INTEGER DEFAULT 0,
		error TEXT,
		resolved_at TEXT NOT NULL,
		duration_ms INTEGER DEFAULT 0,
		resolution_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_resolutions_target ON resolutions(target);
	CREATE INDEX IF NOT EXISTS idx_resolutions_resolved_at ON resolutions(resolved_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveResolution stores res. Saving the same resolution twice is an error.
func (hdb *HistoryDB) SaveResolution(ctx context.Context, res *model.Resolution) error {
	resJSON, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to serialize resolution: %w", err)
	}

	query := `
	INSERT INTO resolutions (
		resolution_id, target, url, latest, artifact_url, content_digest,
		version_count, error, resolved_at, duration_ms, resolution_json
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = hdb.db.ExecContext(ctx, query,
		res.ID,
		res.Target.DisplayName(),
		res.Target.URL,
		res.Latest,
		res.ArtifactURL,
		res.ContentDigest,
		len(res.Versions),
		res.ErrorMessage,
		res.ResolvedAt.UTC().Format(timeLayout),
		res.Duration.Milliseconds(),
		string(resJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save resolution: %w", err)
	}

	return nil
}

// LatestResolution returns the most recent resolution of target, or nil if
// the target has none.
func (hdb *HistoryDB) LatestResolution(ctx context.Context, target string) (*model.Resolution, error) {
	query := `
	SELECT resolution_json FROM resolutions
	WHERE target = ?
	ORDER BY resolved_at DESC, id DESC
	LIMIT 1
	`

	return hdb.queryResolution(ctx, query, target)
}

// GetResolution returns the resolution with the given ID, or nil if there is none.
func (hdb *HistoryDB) GetResolution(ctx context.Context, resolutionID string) (*model.Resolution, error) {
	query := `
	SELECT resolution_json FROM resolutions
	WHERE resolution_id = ?
	`

	return hdb.queryResolution(ctx, query, resolutionID)
}

func (hdb *HistoryDB) queryResolution(ctx context.Context, query string, arg any) (*model.Resolution, error) {
	var resJSON string
	err := hdb.db.QueryRowContext(ctx, query, arg).Scan(&resJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resolution: %w", err)
	}

	var res model.Resolution
	if err := json.Unmarshal([]byte(resJSON), &res); err != nil {
		return nil, fmt.Errorf("failed to parse resolution: %w", err)
	}

	return &res, nil
}

// ListTargets returns the names of all targets with stored resolutions.
func (hdb *HistoryDB) ListTargets(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT target FROM resolutions
	ORDER BY target
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}

	return targets, rows.Err()
}

// HistoryEntry summarizes one stored resolution.
type HistoryEntry struct {
	// ID is the row ID of the resolution in the database.
	ID int64

	// ResolutionID is the resolution's own ID.
	ResolutionID string

	// Target is the target name.
	Target string

	// URL is the listing page.
	URL string

	// Latest is the selected version, empty when the resolution failed.
	Latest string

	// ArtifactURL is the composed artifact URL.
	ArtifactURL string

	// ContentDigest is the digest of the listing page.
	ContentDigest string

	// VersionCount is the number of versions found on the page.
	VersionCount int

	// Error is the failure message, if any.
	Error string

	// ResolvedAt is when the resolution was made.
	ResolvedAt time.Time

	// Duration is how long the resolution took.
	Duration time.Duration

	// Changed reports whether Latest differs from the previous successful
	// resolution of the same target. The first successful resolution is not
	// a change.
	Changed bool
}

// History returns the stored resolutions of target, newest first.
// A positive limit returns at most that many entries.
func (hdb *HistoryDB) History(ctx context.Context, target string, limit int) ([]HistoryEntry, error) {
	query := `
	SELECT id, resolution_id, target, url, latest, artifact_url, content_digest,
		version_count, error, resolved_at, duration_ms
	FROM resolutions
	WHERE target = ?
	ORDER BY resolved_at ASC, id ASC
	`

	rows, err := hdb.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	previous := ""
	for rows.Next() {
		var (
			entry                                    HistoryEntry
			latest, artifactURL, digest, errorString sql.NullString
			resolvedAt                               string
			durationMS                               int64
		)

		if err := rows.Scan(
			&entry.ID, &entry.ResolutionID, &entry.Target, &entry.URL,
			&latest, &artifactURL, &digest, &entry.VersionCount, &errorString,
			&resolvedAt, &durationMS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.Latest = latest.String
		entry.ArtifactURL = artifactURL.String
		entry.ContentDigest = digest.String
		entry.Error = errorString.String
		entry.ResolvedAt = parseTimestamp(resolvedAt)
		entry.Duration = time.Duration(durationMS) * time.Millisecond

		if entry.Latest != "" {
			entry.Changed = previous != "" && entry.Latest != previous
			previous = entry.Latest
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timeLayout,                // Format written by SaveResolution
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
