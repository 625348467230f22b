// Package storage provides data persistence using SQLite for the
// screenshot tool. It records capture history and daily activity stats.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/youchan/profileshot/logger"
)

// Database wraps SQLite database operations
type Database struct {
	db     *sql.DB
	logger *logger.Logger
}

// Capture represents one screenshot run
type Capture struct {
	ID         int64     `json:"id"`
	Profile    string    `json:"profile"`
	URL        string    `json:"url"`
	FinalURL   string    `json:"final_url"`
	Strategy   string    `json:"strategy"`
	OutputPath string    `json:"output_path"`
	SizeBytes  int64     `json:"size_bytes"`
	DurationMs int64     `json:"duration_ms"`
	Status     string    `json:"status"` // ok, failed
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DailyStats tracks today's capture activity
type DailyStats struct {
	Date      string `json:"date"`
	Captures  int    `json:"captures"`
	Failures  int    `json:"failures"`
	TotalSize int64  `json:"total_size_bytes"`
}

// NewDatabase creates a new database connection
func NewDatabase(dbPath string, log *logger.Logger) (*Database, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	database := &Database{
		db:     db,
		logger: log.WithModule("storage"),
	}

	if err := database.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	database.logger.Info("Database initialized successfully")
	return database, nil
}

// initSchema creates the database tables if they don't exist
func (d *Database) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS captures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile TEXT NOT NULL,
		url TEXT NOT NULL,
		final_url TEXT,
		strategy TEXT NOT NULL,
		output_path TEXT,
		size_bytes INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0,
		status TEXT DEFAULT 'ok',
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_captures_created ON captures(created_at);
	CREATE INDEX IF NOT EXISTS idx_captures_profile ON captures(profile);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordCapture inserts a capture record and returns its ID
func (d *Database) RecordCapture(c *Capture) (int64, error) {
	result, err := d.db.Exec(`
		INSERT INTO captures (profile, url, final_url, strategy, output_path, size_bytes, duration_ms, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Profile, c.URL, c.FinalURL, c.Strategy, c.OutputPath, c.SizeBytes, c.DurationMs, c.Status, c.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record capture: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get capture id: %w", err)
	}

	d.logger.WithFields(map[string]interface{}{
		"id":      id,
		"profile": c.Profile,
		"status":  c.Status,
	}).Debug("Capture recorded")

	return id, nil
}

// GetRecentCaptures returns the most recent captures, newest first
func (d *Database) GetRecentCaptures(limit int) ([]*Capture, error) {
	rows, err := d.db.Query(`
		SELECT id, profile, url, final_url, strategy, output_path, size_bytes, duration_ms, status, COALESCE(error, ''), created_at
		FROM captures ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query captures: %w", err)
	}
	defer rows.Close()

	var captures []*Capture
	for rows.Next() {
		c := &Capture{}
		err := rows.Scan(&c.ID, &c.Profile, &c.URL, &c.FinalURL, &c.Strategy,
			&c.OutputPath, &c.SizeBytes, &c.DurationMs, &c.Status, &c.Error, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan capture: %w", err)
		}
		captures = append(captures, c)
	}

	return captures, rows.Err()
}

// GetTodayStats returns aggregate stats for today's captures
func (d *Database) GetTodayStats() (*DailyStats, error) {
	today := time.Now().Format("2006-01-02")

	stats := &DailyStats{Date: today}
	err := d.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status != 'ok' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(size_bytes), 0)
		FROM captures WHERE DATE(created_at) = ?`, today).
		Scan(&stats.Captures, &stats.Failures, &stats.TotalSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}

	return stats, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}
