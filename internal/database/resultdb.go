package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/verbcrawl/internal/model"
)

// DefaultFileName is the database file name used when only a directory is
// configured.
const DefaultFileName = "verbcrawl.db"

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// ResultDB is SQLite storage for crawl results and runs.
type ResultDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ResultDB behavior.
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

// Open opens or creates the database file at dbPath.
func Open(dbPath string, opts Options) (*ResultDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ResultDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *ResultDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *ResultDB) createTables() error {
	schema := `
	-- Runs record each crawl or export invocation
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		state_path TEXT,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME,
		queries_done INTEGER DEFAULT 0,
		queries_failed INTEGER DEFAULT 0,
		records INTEGER DEFAULT 0
	);

	-- Results hold one row per exported record
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		subcorpus TEXT NOT NULL,
		base_verb TEXT NOT NULL,
		lemma TEXT NOT NULL,
		gramm TEXT NOT NULL,
		prefix_value TEXT NOT NULL,
		prefix TEXT NOT NULL,
		suffix_value TEXT NOT NULL,
		suffix TEXT NOT NULL,
		reflexive INTEGER NOT NULL DEFAULT 0,
		secondary INTEGER NOT NULL DEFAULT 0,
		source_name TEXT NOT NULL,
		date_begin REAL,
		date_middle REAL,
		date_end REAL,
		tokens INTEGER,
		page_index INTEGER NOT NULL,
		entry_index INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(subcorpus, base_verb, lemma, gramm, prefix, suffix, reflexive, secondary, page_index, entry_index)
	);

	CREATE INDEX IF NOT EXISTS idx_results_base_verb ON results(base_verb);
	CREATE INDEX IF NOT EXISTS idx_results_subcorpus ON results(subcorpus);
	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
	`

	if err := rdb.renameLegacyResults(); err != nil {
		return err
	}
	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// legacyResultsTable keeps rows of databases created before results were
// keyed by entry position.
const legacyResultsTable = "results_legacy"

// renameLegacyResults moves a results table without the entry_index
// column aside so that the current schema can be created. Its rows are
// kept; `verbcrawl export --db` refills the new table from the state file.
func (rdb *ResultDB) renameLegacyResults() error {
	ctx := context.Background()

	var n int
	err := rdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'results'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if n == 0 {
		return nil
	}
	err = rdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info('results') WHERE name = 'entry_index'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to inspect results table: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Index names are global, so the old indexes go before the new ones
	// are created.
	_, err = rdb.db.ExecContext(ctx, `
	DROP INDEX IF EXISTS idx_results_base_verb;
	DROP INDEX IF EXISTS idx_results_subcorpus;
	DROP INDEX IF EXISTS idx_results_run;
	ALTER TABLE results RENAME TO `+legacyResultsTable+`;
	`)
	if err != nil {
		return fmt.Errorf("failed to move legacy results table: %w", err)
	}
	return nil
}

// Run is one row of the runs table.
type Run struct {
	ID            string
	Kind          string
	StatePath     string
	StartedAt     time.Time
	FinishedAt    time.Time
	QueriesDone   int
	QueriesFailed int
	Records       int
}

// StartRun inserts a new run and returns its ID. kind is "crawl" or
// "export".
func (rdb *ResultDB) StartRun(ctx context.Context, kind, statePath string) (string, error) {
	id := uuid.NewString()

	_, err := rdb.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, state_path) VALUES (?, ?, ?)`,
		id, kind, statePath,
	)
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

// FinishRun stores the outcome of a run.
func (rdb *ResultDB) FinishRun(ctx context.Context, id string, done, failed, records int) error {
	result, err := rdb.db.ExecContext(ctx, `
	UPDATE runs SET
		finished_at = CURRENT_TIMESTAMP,
		queries_done = ?,
		queries_failed = ?,
		records = ?
	WHERE id = ?
	`, done, failed, records, id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListRuns returns all runs, newest first.
func (rdb *ResultDB) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT id, kind, COALESCE(state_path, ''), started_at, COALESCE(finished_at, ''),
		queries_done, queries_failed, records
	FROM runs
	ORDER BY started_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Kind, &r.StatePath, &started, &finished,
			&r.QueriesDone, &r.QueriesFailed, &r.Records); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTimestamp(started)
		r.FinishedAt = parseTimestamp(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// UpsertRecords writes records in one transaction. A row is identified by
// its query (subcorpus, form and category) plus its page and position on
// the page. Existing rows are updated and attributed to runID.
func (rdb *ResultDB) UpsertRecords(ctx context.Context, runID string, records []model.ResultRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO results (run_id, subcorpus, base_verb, lemma, gramm, prefix_value, prefix,
		suffix_value, suffix, reflexive, secondary, source_name, date_begin, date_middle, date_end,
		tokens, page_index, entry_index)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(subcorpus, base_verb, lemma, gramm, prefix, suffix, reflexive, secondary, page_index, entry_index) DO UPDATE SET
		run_id = excluded.run_id,
		prefix_value = excluded.prefix_value,
		suffix_value = excluded.suffix_value,
		source_name = excluded.source_name,
		date_begin = excluded.date_begin,
		date_middle = excluded.date_middle,
		date_end = excluded.date_end,
		tokens = excluded.tokens,
		updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			runID,
			r.Subcorpus.String(),
			r.BaseVerb,
			r.Lemma,
			r.Gramm,
			r.PrefixValue(),
			r.Prefix.String(),
			r.SuffixValue(),
			r.Suffix.String(),
			r.Reflexive,
			r.Secondary,
			r.Source.Name,
			r.Source.DateBegin,
			r.Source.DateMiddle,
			r.Source.DateEnd,
			r.Tokens,
			r.PageIndex,
			r.EntryIndex,
		)
		if err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}
	return nil
}

// RecordFilter narrows QueryRecords. Zero fields match everything.
type RecordFilter struct {
	BaseVerb  string
	Subcorpus string
}

// QueryRecords returns stored records ordered like an export.
func (rdb *ResultDB) QueryRecords(ctx context.Context, filter RecordFilter) ([]model.ResultRecord, error) {
	query := `
	SELECT subcorpus, base_verb, lemma, gramm, prefix_value, prefix, suffix_value, suffix,
		reflexive, secondary, source_name, date_begin, date_middle, date_end, tokens,
		page_index, entry_index
	FROM results
	WHERE 1=1
	`
	args := make([]any, 0)

	if filter.BaseVerb != "" {
		query += " AND base_verb = ?"
		args = append(args, filter.BaseVerb)
	}
	if filter.Subcorpus != "" {
		query += " AND subcorpus = ?"
		args = append(args, filter.Subcorpus)
	}
	query += " ORDER BY id"

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var records []model.ResultRecord
	for rows.Next() {
		var r model.ResultRecord
		var sub, prefixValue, prefix, suffixValue, suffix string
		if err := rows.Scan(&sub, &r.BaseVerb, &r.Lemma, &r.Gramm, &prefixValue, &prefix, &suffixValue, &suffix,
			&r.Reflexive, &r.Secondary, &r.Source.Name, &r.Source.DateBegin, &r.Source.DateMiddle,
			&r.Source.DateEnd, &r.Tokens, &r.PageIndex, &r.EntryIndex); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if r.Subcorpus, err = model.ParseSubcorpus(sub); err != nil {
			return nil, err
		}
		r.Prefix = marker(prefixValue == model.YesPrefix, prefix)
		r.Suffix = marker(suffixValue == model.YesSuffix, suffix)
		records = append(records, r)
	}
	return records, rows.Err()
}

func marker(present bool, id string) model.Marker {
	if present {
		return model.Some(id)
	}
	return model.None()
}

// CountRecords returns the number of stored records.
func (rdb *ResultDB) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := rdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return n, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each of timestampFormats and returns the zero time
// when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
