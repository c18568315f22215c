package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"locobot/internal/logging"

	_ "modernc.org/sqlite"
)

// Store persists the conversation log and current artifact so a CLI session
// survives process restarts.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenStore opens (or creates) the session database at the given path.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		is_plan INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
	CREATE TABLE IF NOT EXISTS artifact (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		code TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("Session store opened at %s", path)
	return &Store{db: db}, nil
}

// AppendMessage persists one committed message.
func (s *Store) AppendMessage(m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	isPlan := 0
	if m.IsPlan {
		isPlan = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO messages (id, role, text, is_plan, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, string(m.Role), m.Text, isPlan, m.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// Messages returns the full conversation log in commit order.
func (s *Store) Messages() ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT id, role, text, is_plan, created_at FROM messages ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var role string
		var isPlan int
		var createdAt int64
		if err := rows.Scan(&m.ID, &role, &m.Text, &isPlan, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = Role(role)
		m.IsPlan = isPlan != 0
		m.Timestamp = time.UnixMilli(createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveArtifact replaces the current artifact.
func (s *Store) SaveArtifact(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO artifact (id, code, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET code = excluded.code, updated_at = excluded.updated_at`,
		code, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	return nil
}

// Artifact returns the current artifact, with ok=false when none exists.
func (s *Store) Artifact() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	err := s.db.QueryRow(`SELECT code FROM artifact WHERE id = 1`).Scan(&code)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load artifact: %w", err)
	}
	return code, true, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
