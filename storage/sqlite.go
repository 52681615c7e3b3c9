package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"offer_manager/models"
)

// SQLiteStore is the on-disk triage state: the New and Rejected sets, plus
// the history of scrape runs.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS new_listings (
		url TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		name TEXT NOT NULL,
		interesting BOOLEAN NOT NULL DEFAULT FALSE,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rejected_listings (
		url TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		name TEXT NOT NULL,
		reason TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scrape_runs (
		id TEXT PRIMARY KEY,
		site_id TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		listings_found INTEGER DEFAULT 0,
		listings_new INTEGER DEFAULT 0,
		error TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id INTEGER PRIMARY KEY,
		run_id TEXT,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		site_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_site ON scrape_runs(site_id, started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON scrape_logs(run_id, timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LoadListings returns both sets in saved order. A fresh database yields two empty sets.
func (s *SQLiteStore) LoadListings() ([]models.NewListing, []models.RejectedListing, error) {
	newRows, err := s.db.Query(`
		SELECT url, source, name, interesting
		FROM new_listings ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("query new listings: %w", err)
	}
	defer newRows.Close()

	var fresh []models.NewListing
	for newRows.Next() {
		var l models.NewListing
		if err := newRows.Scan(&l.URL, &l.Source, &l.Name, &l.Interesting); err != nil {
			return nil, nil, err
		}
		fresh = append(fresh, l)
	}
	if err := newRows.Err(); err != nil {
		return nil, nil, err
	}

	rejRows, err := s.db.Query(`
		SELECT url, source, name, reason
		FROM rejected_listings ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("query rejected listings: %w", err)
	}
	defer rejRows.Close()

	var rejected []models.RejectedListing
	for rejRows.Next() {
		var l models.RejectedListing
		var reason string
		if err := rejRows.Scan(&l.URL, &l.Source, &l.Name, &reason); err != nil {
			return nil, nil, err
		}
		if l.Reason, err = models.ParseReason(reason); err != nil {
			return nil, nil, fmt.Errorf("rejected listing %s: %w", l.URL, err)
		}
		rejected = append(rejected, l)
	}
	return fresh, rejected, rejRows.Err()
}

// SaveListings replaces both sets in one transaction, so an interrupted save
// leaves the previous one in place.
func (s *SQLiteStore) SaveListings(fresh []models.NewListing, rejected []models.RejectedListing) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM new_listings`); err != nil {
		return fmt.Errorf("clear new listings: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM rejected_listings`); err != nil {
		return fmt.Errorf("clear rejected listings: %w", err)
	}

	newStmt, err := tx.Prepare(`
		INSERT INTO new_listings (url, source, name, interesting, position)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer newStmt.Close()

	for i, l := range fresh {
		if _, err := newStmt.Exec(l.URL, l.Source, l.Name, l.Interesting, i); err != nil {
			return fmt.Errorf("insert new listing %s: %w", l.URL, err)
		}
	}

	rejStmt, err := tx.Prepare(`
		INSERT INTO rejected_listings (url, source, name, reason, position)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer rejStmt.Close()

	for i, l := range rejected {
		if _, err := rejStmt.Exec(l.URL, l.Source, l.Name, string(l.Reason), i); err != nil {
			return fmt.Errorf("insert rejected listing %s: %w", l.URL, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) CreateRun(run *models.ScrapeRun) error {
	_, err := s.db.Exec(`
		INSERT INTO scrape_runs (id, site_id, started_at, status, listings_found, listings_new, error)
		VALUES (?, ?, ?, ?, 0, 0, '')`,
		run.ID.String(), run.SiteID, run.StartedAt, run.Status)
	return err
}

func (s *SQLiteStore) UpdateRun(run *models.ScrapeRun) error {
	_, err := s.db.Exec(`
		UPDATE scrape_runs SET finished_at = ?, status = ?, listings_found = ?,
			listings_new = ?, error = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.ListingsFound, run.ListingsNew, run.Error, run.ID.String())
	return err
}

func (s *SQLiteStore) Log(runID *uuid.UUID, level models.LogLevel, message, siteID string) error {
	var id sql.NullString
	if runID != nil {
		id = sql.NullString{String: runID.String(), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO scrape_logs (run_id, timestamp, level, message, site_id)
		VALUES (?, ?, ?, ?, ?)`,
		id, time.Now(), level, message, siteID)
	return err
}

// RecentRuns returns the latest runs, newest first.
func (s *SQLiteStore) RecentRuns(limit int) ([]models.ScrapeRun, error) {
	rows, err := s.db.Query(`
		SELECT id, site_id, started_at, finished_at, status, listings_found, listings_new, error
		FROM scrape_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ScrapeRun
	for rows.Next() {
		var run models.ScrapeRun
		var id string
		var finished sql.NullTime
		var errText sql.NullString
		if err := rows.Scan(&id, &run.SiteID, &run.StartedAt, &finished, &run.Status,
			&run.ListingsFound, &run.ListingsNew, &errText); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		run.Error = errText.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) GetLogsForRun(runID uuid.UUID) ([]models.ScrapeLog, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, level, message, site_id
		FROM scrape_logs WHERE run_id = ? ORDER BY id`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ScrapeLog
	for rows.Next() {
		var l models.ScrapeLog
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.Message, &l.SiteID); err != nil {
			return nil, err
		}
		id := runID
		l.RunID = &id
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
