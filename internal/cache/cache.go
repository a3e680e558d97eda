package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/soundbrowse/soundbrowse/internal/types"
)

// Store persists fetched subresource pages and the username lookup history.
// Pages are keyed by (user id, category, cursor) and invalidated wholesale
// when a different user is resolved.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the cache database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		user_id INTEGER NOT NULL,
		category TEXT NOT NULL,
		cursor TEXT NOT NULL,
		payload TEXT NOT NULL,
		fetched_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, category, cursor)
	);

	CREATE TABLE IF NOT EXISTS lookups (
		username TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		resolved_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lookups_resolved_at ON lookups(resolved_at DESC);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return nil
}

// GetPage returns the cached page for the coordinate, if present.
func (s *Store) GetPage(userID int64, category types.Category, cursor string) (*types.Page, bool, error) {
	var payload string
	err := s.db.QueryRow(
		"SELECT payload FROM pages WHERE user_id = ? AND category = ? AND cursor = ?",
		userID, string(category), cursor,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached page: %w", err)
	}

	var page types.Page
	if err := json.Unmarshal([]byte(payload), &page); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached page: %w", err)
	}
	return &page, true, nil
}

// PutPage stores a fetched page, replacing any previous entry for the
// same coordinate.
func (s *Store) PutPage(userID int64, category types.Category, page *types.Page) error {
	payload, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal page: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO pages (user_id, category, cursor, payload, fetched_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, string(category), page.Cursor, string(payload),
		time.Now().Local().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to save cached page: %w", err)
	}
	return nil
}

// InvalidateOtherUsers drops every cached page that does not belong to the
// given user. Called after a lookup resolves a different username.
func (s *Store) InvalidateOtherUsers(userID int64) error {
	_, err := s.db.Exec("DELETE FROM pages WHERE user_id != ?", userID)
	if err != nil {
		return fmt.Errorf("failed to invalidate cached pages: %w", err)
	}
	return nil
}

// Clear drops every cached page.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM pages")
	if err != nil {
		return fmt.Errorf("failed to clear page cache: %w", err)
	}
	return nil
}

// RecordLookup remembers a successful username resolution for the
// recent-usernames list in the prompt modal.
func (s *Store) RecordLookup(username string, userID int64) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO lookups (username, user_id, resolved_at) VALUES (?, ?, ?)`,
		username, userID, time.Now().Local().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to record lookup: %w", err)
	}
	return nil
}

// RecentLookups returns up to limit previously resolved usernames, most
// recent first.
func (s *Store) RecentLookups(limit int) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT username FROM lookups ORDER BY resolved_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load lookup history: %w", err)
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("failed to scan lookup entry: %w", err)
		}
		usernames = append(usernames, username)
	}
	return usernames, rows.Err()
}

// PageCount reports how many pages are cached.
func (s *Store) PageCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM pages").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cached pages: %w", err)
	}
	return count, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
