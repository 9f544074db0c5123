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

	"github.com/nao1215/suruext/internal/model"
)

// FileName is the database file inside the data directory.
const FileName = "suruext.db"

// ResultDB is the SQLite history store.
type ResultDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and file when missing.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions creates the database and enables WAL.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the database in dbDir.
func Open(dbDir string, opts Options) (*ResultDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
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

	rdb := &ResultDB{db: db, dbPath: dbPath}

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

// Close closes the database.
func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

func (rdb *ResultDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		snapshot TEXT,
		raw_hash TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pages_timestamp ON pages(timestamp);

	CREATE TABLE IF NOT EXISTS augment_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		suru_id TEXT,
		headword TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		summary_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_target ON augment_reports(target);
	CREATE INDEX IF NOT EXISTS idx_reports_suru ON augment_reports(suru_id);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON augment_reports(timestamp);

	CREATE TABLE IF NOT EXISTS lexeme_creations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lexeme_id TEXT NOT NULL,
		lemma TEXT NOT NULL,
		lang TEXT NOT NULL,
		category TEXT NOT NULL,
		suru_id TEXT,
		sense_id TEXT,
		sense_item TEXT,
		created INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_creations_lemma ON lexeme_creations(lemma);
	CREATE INDEX IF NOT EXISTS idx_creations_suru ON lexeme_creations(suru_id);
	`
	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// PageRecord is a stored page fetch.
type PageRecord struct {
	ID          int64
	URL         string
	Timestamp   time.Time
	StatusCode  int
	ContentType string
	Title       string
	Snapshot    string
	RawHash     string
}

// SavePage inserts or replaces the record of page.URL.
func (rdb *ResultDB) SavePage(ctx context.Context, page *model.Page) (int64, error) {
	query := `
	INSERT INTO pages (url, status_code, content_type, title, snapshot, raw_hash)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		title = excluded.title,
		snapshot = excluded.snapshot,
		raw_hash = excluded.raw_hash,
		timestamp = CURRENT_TIMESTAMP
	`
	result, err := rdb.db.ExecContext(ctx, query,
		page.URL,
		page.StatusCode,
		page.ContentType,
		page.Title,
		page.Snapshot,
		page.Hash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save page: %w", err)
	}
	return result.LastInsertId()
}

// GetPage returns the record of url, or nil when there is none.
func (rdb *ResultDB) GetPage(ctx context.Context, url string) (*PageRecord, error) {
	query := `
	SELECT id, url, timestamp, status_code, content_type, title, snapshot, raw_hash
	FROM pages
	WHERE url = ?
	`
	var (
		record    PageRecord
		timestamp string
	)
	err := rdb.db.QueryRowContext(ctx, query, url).Scan(
		&record.ID,
		&record.URL,
		&timestamp,
		&record.StatusCode,
		&record.ContentType,
		&record.Title,
		&record.Snapshot,
		&record.RawHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	record.Timestamp = parseTimestamp(timestamp)
	return &record, nil
}

// HasRecentFetch reports whether url was saved within d.
func (rdb *ResultDB) HasRecentFetch(ctx context.Context, url string, d time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM pages
	WHERE url = ? AND timestamp > datetime('now', ?)
	`
	modifier := fmt.Sprintf("-%d seconds", int(d.Seconds()))

	var count int
	if err := rdb.db.QueryRowContext(ctx, query, url, modifier).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check recent fetch: %w", err)
	}
	return count > 0, nil
}

// SaveReport stores report with its summary and returns the row id. The
// fetched page, when present, is saved too.
func (rdb *ResultDB) SaveReport(ctx context.Context, report *model.AugmentReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	summaryJSON, err := json.Marshal(model.NewSummary(report))
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	if report.Page != nil && report.Page.URL != "" {
		if _, err := rdb.SavePage(ctx, report.Page); err != nil {
			return 0, err
		}
	}

	query := `
	INSERT INTO augment_reports (target, suru_id, headword, report_json, summary_json)
	VALUES (?, ?, ?, ?, ?)
	`
	result, err := rdb.db.ExecContext(ctx, query,
		report.Target,
		report.SuruID,
		report.Headword,
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}
	return result.LastInsertId()
}

// GetLatestReport returns the newest report for target, or nil.
func (rdb *ResultDB) GetLatestReport(ctx context.Context, target string) (*model.AugmentReport, error) {
	query := `
	SELECT report_json FROM augment_reports
	WHERE target = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`
	return rdb.queryReport(ctx, query, target)
}

// GetReportByID returns the report with the given row id, or nil.
func (rdb *ResultDB) GetReportByID(ctx context.Context, id int64) (*model.AugmentReport, error) {
	return rdb.queryReport(ctx, `SELECT report_json FROM augment_reports WHERE id = ?`, id)
}

func (rdb *ResultDB) queryReport(ctx context.Context, query string, args ...any) (*model.AugmentReport, error) {
	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.AugmentReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// GetHistory returns every report for target, newest first. Rows that no
// longer decode are skipped.
func (rdb *ResultDB) GetHistory(ctx context.Context, target string) ([]*model.AugmentReport, error) {
	query := `
	SELECT report_json FROM augment_reports
	WHERE target = ?
	ORDER BY timestamp DESC, id DESC
	`
	rows, err := rdb.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var reports []*model.AugmentReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		var report model.AugmentReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue
		}
		reports = append(reports, &report)
	}
	return reports, rows.Err()
}

// ReportMetadata describes a stored report without loading it.
type ReportMetadata struct {
	ID        int64
	Target    string
	SuruID    string
	Headword  string
	Timestamp time.Time
	Summary   *model.Summary
}

// Filter selects reports in GetHistoryWithMetadata. Empty fields match
// everything.
type Filter struct {
	Target string
	SuruID string
	Limit  int
}

// GetHistoryWithMetadata lists report metadata, newest first.
func (rdb *ResultDB) GetHistoryWithMetadata(ctx context.Context, f Filter) ([]ReportMetadata, error) {
	query := `
	SELECT id, target, suru_id, headword, timestamp, summary_json
	FROM augment_reports
	WHERE 1=1
	`
	args := make([]any, 0, 3)
	if f.Target != "" {
		query += " AND target = ?"
		args = append(args, f.Target)
	}
	if f.SuruID != "" {
		query += " AND suru_id = ?"
		args = append(args, model.StripSuruPrefix(f.SuruID))
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var (
			meta                      ReportMetadata
			suruID, headword, summary sql.NullString
			timestamp                 string
		)
		if err := rows.Scan(&meta.ID, &meta.Target, &suruID, &headword, &timestamp, &summary); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.SuruID = suruID.String
		meta.Headword = headword.String
		meta.Timestamp = parseTimestamp(timestamp)

		meta.Summary = &model.Summary{Target: meta.Target, SuruID: meta.SuruID, Headword: meta.Headword}
		if summary.Valid && summary.String != "" {
			if err := json.Unmarshal([]byte(summary.String), meta.Summary); err != nil {
				meta.Summary = &model.Summary{Target: meta.Target, SuruID: meta.SuruID, Headword: meta.Headword}
			}
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// ListTargets returns every augmented target in name order.
func (rdb *ResultDB) ListTargets(ctx context.Context) ([]string, error) {
	rows, err := rdb.db.QueryContext(ctx, `SELECT DISTINCT target FROM augment_reports ORDER BY target`)
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

// Creation is one lexeme created or reused by the creator service.
type Creation struct {
	ID        int64
	LexemeID  string
	Lemma     string
	Lang      string
	Category  string
	SuruID    string
	SenseID   string
	SenseItem string
	// Created is false when an existing lexeme was reused.
	Created   bool
	Timestamp time.Time
}

// RecordCreation stores c and returns its row id.
func (rdb *ResultDB) RecordCreation(ctx context.Context, c *Creation) (int64, error) {
	query := `
	INSERT INTO lexeme_creations (lexeme_id, lemma, lang, category, suru_id, sense_id, sense_item, created)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := rdb.db.ExecContext(ctx, query,
		c.LexemeID,
		c.Lemma,
		c.Lang,
		c.Category,
		c.SuruID,
		c.SenseID,
		c.SenseItem,
		c.Created,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record creation: %w", err)
	}
	return result.LastInsertId()
}

// ListCreations returns recorded creations, newest first. A non-empty
// lemma restricts the list; limit 0 returns everything.
func (rdb *ResultDB) ListCreations(ctx context.Context, lemma string, limit int) ([]Creation, error) {
	query := `
	SELECT id, lexeme_id, lemma, lang, category, suru_id, sense_id, sense_item, created, timestamp
	FROM lexeme_creations
	WHERE 1=1
	`
	args := make([]any, 0, 2)
	if lemma != "" {
		query += " AND lemma = ?"
		args = append(args, lemma)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list creations: %w", err)
	}
	defer rows.Close()

	var out []Creation
	for rows.Next() {
		var (
			c                          Creation
			suruID, senseID, senseItem sql.NullString
			timestamp                  string
		)
		if err := rows.Scan(&c.ID, &c.LexemeID, &c.Lemma, &c.Lang, &c.Category,
			&suruID, &senseID, &senseItem, &c.Created, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan creation: %w", err)
		}
		c.SuruID = suruID.String
		c.SenseID = senseID.String
		c.SenseItem = senseItem.String
		c.Timestamp = parseTimestamp(timestamp)
		out = append(out, c)
	}
	return out, rows.Err()
}

// timestampFormats are the layouts SQLite returns DATETIME values in,
// most specific first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
