/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	// Register the pure-Go SQLite driver with database/sql.
	_ "modernc.org/sqlite"
)

// Lock-contention policy. A second process holding the file lock makes
// the driver report a locked database once busyTimeout elapses; we then
// retry the whole operation lockMaxAttempts times, lockRetryDelay apart,
// before giving up.
const (
	busyTimeout     = 10 * time.Second
	lockMaxAttempts = 3
	lockRetryDelay  = 500 * time.Millisecond
)

// Store owns the SQLite database file and exposes all persistence
// primitives. The path is fixed at construction; there is no ambient
// global state.
type Store struct {
	path string

	// mu guards the handle pointer, which RestoreFrom swaps while
	// replacing the underlying file.
	mu sync.RWMutex
	db *sql.DB
}

// Open opens (creating if necessary) the database file at path and
// returns a store for it. The parent directory is created when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := openDatabase(path)
	if err != nil {
		return nil, err
	}

	logger.Debug("Opened database", "path", path)

	return &Store{path: path, db: db}, nil
}

func openDatabase(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		path, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serialises writers inside this process; the
	// busy timeout covers writers in other processes.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Path returns the location of the live database file.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database handle. The store must not be
// used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil

	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// handle returns the live database handle, or nil when the store has
// been closed.
func (s *Store) handle() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db
}

// withRetry runs fn, retrying when the database reports it is locked.
// Callers must treat a returned ErrBusy as definitive, not retryable.
func (s *Store) withRetry(op string, fn func(db *sql.DB) error) error {
	db := s.handle()
	if db == nil {
		return ErrStoreClosed
	}

	var err error
	for attempt := 1; attempt <= lockMaxAttempts; attempt++ {
		err = fn(db)
		if err == nil {
			if attempt > 1 {
				logger.Info("Database operation succeeded after retry", "op", op, "attempt", attempt)
			}

			return nil
		}

		if !isLocked(err) {
			return err
		}

		if attempt < lockMaxAttempts {
			logger.Warn("Database is locked, retrying", "op", op, "attempt", attempt, "delay", lockRetryDelay)
			time.Sleep(lockRetryDelay)
		}
	}

	logger.Warn("Database is locked, giving up", "op", op, "attempts", lockMaxAttempts)

	return fmt.Errorf("%w after %d attempts: %v", ErrBusy, lockMaxAttempts, err)
}

// isLocked reports whether err is SQLite lock contention.
func isLocked(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a FOREIGN KEY constraint
// failure.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// isValidTimestamp reports whether ts parses in a storable form: the
// canonical layout, its ISO "T" variant, or a bare date.
func isValidTimestamp(ts string) bool {
	for _, layout := range []string{TimestampLayout, "2006-01-02T15:04:05", "2006-01-02"} {
		if _, err := time.Parse(layout, ts); err == nil {
			return true
		}
	}

	return false
}
