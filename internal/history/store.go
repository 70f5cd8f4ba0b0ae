package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"temposync/internal/models"
)

// Store is a local SQLite ledger of pipeline runs and submission
// attempts. It is a review and debugging aid; scheduling never depends
// on it.
type Store struct {
	conn   *sql.DB
	dbPath string
}

// Open creates a store at the given path, initializing the schema
func Open(dbPath string) (*Store, error) {
	if strings.HasPrefix(dbPath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, dbPath[2:])
	}

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{
		conn:   conn,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	createRunsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		mode TEXT NOT NULL,
		entry_count INTEGER NOT NULL,
		total_seconds INTEGER NOT NULL,
		overflow_remaining INTEGER NOT NULL DEFAULT 0,
		cap_exceeded BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := s.conn.Exec(createRunsTable); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	createSubmissionsTable := `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		start_time TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL,
		success BOOLEAN NOT NULL,
		message TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := s.conn.Exec(createSubmissionsTable); err != nil {
		return fmt.Errorf("failed to create submissions table: %w", err)
	}

	createIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_date ON runs(date);",
		"CREATE INDEX IF NOT EXISTS idx_submissions_code ON submissions(code);",
	}
	for _, indexSQL := range createIndexes {
		if _, err := s.conn.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// RunRecord is one scheduling run over a single calendar date
type RunRecord struct {
	ID                string
	Date              string
	Mode              string
	EntryCount        int
	TotalSeconds      int
	OverflowRemaining int
	CapExceeded       bool
	CreatedAt         time.Time
}

// RecordRun stores the outcome of one per-date pipeline run
func (s *Store) RecordRun(date time.Time, mode string, entries []*models.Entry, overflowRemaining int, capExceeded bool) (string, error) {
	id := uuid.NewString()
	total := 0
	for _, e := range entries {
		total += e.DurationSeconds
	}

	query := `
	INSERT INTO runs (id, date, mode, entry_count, total_seconds, overflow_remaining, cap_exceeded)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	if _, err := s.conn.Exec(query, id, date.Format("2006-01-02"), mode,
		len(entries), total, overflowRemaining, capExceeded); err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	return id, nil
}

// RecordSubmission stores the outcome of one submission attempt
func (s *Store) RecordSubmission(entry *models.Entry, success bool, message string) error {
	query := `
	INSERT INTO submissions (id, code, start_time, duration_seconds, success, message)
	VALUES (?, ?, ?, ?, ?, ?)`

	if _, err := s.conn.Exec(query, uuid.NewString(), entry.Code,
		entry.Start.Format("2006-01-02T15:04:05"), entry.DurationSeconds, success, message); err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}

	return nil
}

// RunsForDate returns the recorded runs for a calendar date, newest first
func (s *Store) RunsForDate(date string) ([]RunRecord, error) {
	query := `
	SELECT id, date, mode, entry_count, total_seconds, overflow_remaining, cap_exceeded, created_at
	FROM runs
	WHERE date = ?
	ORDER BY created_at DESC`

	rows, err := s.conn.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Date, &r.Mode, &r.EntryCount, &r.TotalSeconds,
			&r.OverflowRemaining, &r.CapExceeded, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}
