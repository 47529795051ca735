package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding user profiles and moderation records.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "slaymom.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// One connection: writes are serialized and ":memory:" stays a single database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- User profiles ---

// GetProfileRecord returns the raw JSON document stored for userID.
func (s *Store) GetProfileRecord(userID string) (string, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM user_profiles WHERE user_id = ?", userID).Scan(&data)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return data, err
}

// PutProfileRecord inserts or replaces the JSON document for userID.
func (s *Store) PutProfileRecord(userID, data string) error {
	now := s.now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT INTO user_profiles (user_id, data, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		userID, data, now, now,
	)
	return err
}

// DeleteProfileRecord removes the document for userID. Returns ErrNotFound
// if there was nothing to delete.
func (s *Store) DeleteProfileRecord(userID string) error {
	res, err := s.db.Exec("DELETE FROM user_profiles WHERE user_id = ?", userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AllProfileRecords returns every stored document keyed by user ID.
func (s *Store) AllProfileRecords() (map[string]string, error) {
	rows, err := s.db.Query("SELECT user_id, data FROM user_profiles")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		result[id] = data
	}
	return result, rows.Err()
}

// ReplaceProfileRecords swaps the whole profile table for records in one
// transaction. Used by data import.
func (s *Store) ReplaceProfileRecords(records map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM user_profiles"); err != nil {
		return fmt.Errorf("clearing profiles: %w", err)
	}

	now := s.now().UTC().Format(time.RFC3339)
	for id, data := range records {
		if _, err := tx.Exec(`INSERT INTO user_profiles (user_id, data, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			id, data, now, now); err != nil {
			return fmt.Errorf("inserting profile %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// CountProfiles returns the number of stored profiles.
func (s *Store) CountProfiles() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM user_profiles").Scan(&n)
	return n, err
}

// --- Warnings ---

func (s *Store) SaveWarning(w Warning) error {
	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.db.Exec(`
		INSERT INTO warnings (id, guild_id, user_id, moderator_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.GuildID, w.UserID, w.ModeratorID, w.Reason, createdAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListWarnings returns the newest warnings recorded against userID.
func (s *Store) ListWarnings(userID string, limit int) ([]Warning, error) {
	rows, err := s.db.Query(`
		SELECT id, guild_id, user_id, moderator_id, reason, created_at
		FROM warnings WHERE user_id = ? ORDER BY created_at DESC, id ASC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Warning
	for rows.Next() {
		var w Warning
		var createdAt string
		if err := rows.Scan(&w.ID, &w.GuildID, &w.UserID, &w.ModeratorID, &w.Reason, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		w.CreatedAt = t
		results = append(results, w)
	}
	return results, rows.Err()
}
