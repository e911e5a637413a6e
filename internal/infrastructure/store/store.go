package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/iristrack/core/internal/infrastructure/config"
	"github.com/iristrack/core/internal/infrastructure/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS subjects (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	year             TEXT NOT NULL DEFAULT '',
	short_name       TEXT NOT NULL DEFAULT '',
	has_three_exams  INTEGER NOT NULL DEFAULT 0,
	is_finished      INTEGER NOT NULL DEFAULT 0,
	exam_grades      TEXT NOT NULL DEFAULT '[]',
	final_grades     TEXT NOT NULL DEFAULT '[]',
	final_exam_dates TEXT NOT NULL DEFAULT '[]',
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_subjects_name ON subjects (name);

CREATE TABLE IF NOT EXISTS assignments (
	id           TEXT PRIMARY KEY,
	subject_id   TEXT NOT NULL REFERENCES subjects (id) ON DELETE CASCADE,
	title        TEXT NOT NULL DEFAULT '',
	priority     TEXT NOT NULL DEFAULT 'normal',
	sort_order   INTEGER NOT NULL DEFAULT 0,
	exam_date    TIMESTAMP,
	is_completed INTEGER NOT NULL DEFAULT 0,
	timestamp    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assignments_subject ON assignments (subject_id);
`

// UserStore is one user's isolated on-disk store.
type UserStore struct {
	DB     *sqlx.DB
	UserID string
	dir    string
}

// Close closes the underlying database handle.
func (s *UserStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// Manager provisions per-user stores lazily and caches them by user id for
// the process lifetime. All mutation happens on the application's single
// writer context; the mutex only guards the cache map itself.
type Manager struct {
	cfg    config.DataConfig
	logger *logger.Logger

	mu     sync.Mutex
	stores map[string]*UserStore
}

// NewManager creates a store manager rooted at the configured data directory.
func NewManager(cfg config.DataConfig, logger *logger.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logger,
		stores: make(map[string]*UserStore),
	}
}

// Open returns the store for the given user, creating files and schema on
// first access.
func (m *Manager) Open(userID string) (*UserStore, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[userID]; ok {
		return s, nil
	}

	dir := m.cfg.UserDir(userID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create user data directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", filepath.Join(dir, "iris.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open user store: %w", err)
	}

	// A single serialized writer is enough for a local client store.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &UserStore{DB: db, UserID: userID, dir: dir}
	m.stores[userID] = s

	m.logger.WithUserID(userID).Infow("User store opened", "dir", dir)
	return s, nil
}

// Bind provisions the store for the given user. Implements the session
// service's provisioner port.
func (m *Manager) Bind(ctx context.Context, userID string) error {
	_, err := m.Open(userID)
	return err
}

// Destroy closes the user's store, evicts it from the cache and removes its
// files from disk.
func (m *Manager) Destroy(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[userID]; ok {
		if err := s.Close(); err != nil {
			m.logger.Warnw("Failed to close user store", "user_id", userID, "error", err)
		}
		delete(m.stores, userID)
	}

	dir := m.cfg.UserDir(userID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove user data: %w", err)
	}

	m.logger.Infow("User store destroyed", "user_id", userID)
	return nil
}

// Close closes every cached store.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for id, s := range m.stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.stores, id)
	}
	return firstErr
}
