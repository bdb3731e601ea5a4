package client

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// State manages persistent client state in SQLite: config values, the last
// active room, auth token, and the last-seen timestamp.
type State struct {
	db       *sql.DB
	stateDir string
}

// OpenState opens or creates the state database at path.
func OpenState(path string) (*State, error) {
	stateDir := filepath.Dir(path)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	// SQLite requires a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &State{db: db, stateDir: stateDir}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *State) runMigrations() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS Config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	return err
}

// Close closes the state database.
func (s *State) Close() error {
	return s.db.Close()
}

// GetStateDir returns the directory holding the state database.
func (s *State) GetStateDir() string {
	return s.stateDir
}

// GetConfig retrieves a config value, or defaultValue if not set.
func (s *State) GetConfig(key, defaultValue string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM Config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return defaultValue, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetConfig stores a config value.
func (s *State) SetConfig(key, value string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO Config (key, value) VALUES (?, ?)", key, value)
	return err
}

// LastRoomID returns the id of the room active when the client last ran, or
// empty if none was recorded.
func (s *State) LastRoomID() string {
	id, err := s.GetConfig("last_room_id", "")
	if err != nil {
		return ""
	}
	return id
}

// SetLastRoomID records the currently active room.
func (s *State) SetLastRoomID(roomID string) error {
	return s.SetConfig("last_room_id", roomID)
}

// GetAuthToken returns the stored auth token, or empty if none.
func (s *State) GetAuthToken() string {
	token, err := s.GetConfig("auth_token", "")
	if err != nil {
		return ""
	}
	return token
}

// SetAuthToken stores the auth token.
func (s *State) SetAuthToken(token string) error {
	return s.SetConfig("auth_token", token)
}

// GetLastSeenTimestamp returns the last recorded activity time in Unix
// milliseconds, or zero if none.
func (s *State) GetLastSeenTimestamp() int64 {
	value, err := s.GetConfig("last_seen_ms", "0")
	if err != nil {
		return 0
	}
	var ms int64
	fmt.Sscanf(value, "%d", &ms)
	return ms
}

// SetLastSeenTimestamp records an activity time in Unix milliseconds.
func (s *State) SetLastSeenTimestamp(ms int64) error {
	return s.SetConfig("last_seen_ms", fmt.Sprintf("%d", ms))
}

// UpdateLastSeenTimestamp records the current time as the last activity.
func (s *State) UpdateLastSeenTimestamp() error {
	return s.SetLastSeenTimestamp(time.Now().UnixMilli())
}
