/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// safetyBackupPrefix names the automatic copy of the live database
// taken immediately before a restore overwrites it.
const safetyBackupPrefix = "auto_backup_"

// lowSpaceMargin is the extra headroom the space advisory expects on
// top of twice the database size.
const lowSpaceMargin = 10 * 1024 * 1024

// BackupTo writes a consistent snapshot of the live database to
// destPath using VACUUM INTO. The destination must not already exist.
func (s *Store) BackupTo(ctx context.Context, destPath string) error {
	db := s.handle()
	if db == nil {
		return ErrStoreClosed
	}

	srcInfo, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("source database missing at %s: %w", s.path, err)
	}

	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("backup destination already exists: %s", destPath)
	}

	dir := filepath.Dir(destPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}
	}

	// Advisory only; a snapshot needs roughly twice the database size
	// while VACUUM INTO runs.
	if free, ok := freeSpace(dir); ok && free < uint64(srcInfo.Size())*2+lowSpaceMargin {
		logger.Warn("Low disk space for backup", "db_size", srcInfo.Size(), "free", free)
	}

	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, destPath); err != nil {
		// VACUUM INTO can leave a partial file behind on failure.
		os.Remove(destPath)

		return fmt.Errorf("failed to back up database: %w", err)
	}

	info, err := os.Stat(destPath)
	if err != nil || info.Size() == 0 {
		os.Remove(destPath)

		return fmt.Errorf("backup file was not created at %s", destPath)
	}

	logger.Info("Created database backup", "path", destPath, "size", info.Size())

	return nil
}

// ValidateBackupFile checks that path holds a SQLite database carrying
// the tables this application needs. It returns ErrInvalidBackup for
// anything else.
func ValidateBackupFile(path string) error {
	db, err := openDatabase(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	defer rows.Close()

	tables := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
		tables[name] = true
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	for _, required := range []string{"Biomarkers", "Readings"} {
		if !tables[required] {
			return fmt.Errorf("%w: missing table %q", ErrInvalidBackup, required)
		}
	}

	return nil
}

// RestoreFrom replaces the live database file with the one at srcPath
// and reopens the store on it. A safety copy of the previous database
// is written next to it first; its path is returned. When the swap or
// reopen fails the previous database is rolled back into place.
func (s *Store) RestoreFrom(ctx context.Context, srcPath string) (string, error) {
	if err := ValidateBackupFile(srcPath); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return "", ErrStoreClosed
	}

	safetyPath := filepath.Join(filepath.Dir(s.path),
		safetyBackupPrefix+time.Now().Format("20060102_150405")+".db")

	if err := copyFile(s.path, safetyPath); err != nil {
		return "", fmt.Errorf("failed to create safety backup: %w", err)
	}

	// The open handle pins the old file; close it before the swap so
	// the reopen below sees the restored content.
	if err := s.db.Close(); err != nil {
		s.db = nil

		return "", fmt.Errorf("failed to close database for restore: %w", err)
	}
	s.db = nil

	if err := copyFile(srcPath, s.path); err != nil {
		restoreErr := fmt.Errorf("failed to replace database file: %w", err)

		return "", s.rollback(safetyPath, restoreErr)
	}

	db, err := openDatabase(s.path)
	if err != nil {
		restoreErr := fmt.Errorf("failed to reopen restored database: %w", err)

		return "", s.rollback(safetyPath, restoreErr)
	}

	// Backups taken on an older schema are brought up to date before
	// the store serves from them.
	if err := migrateDatabase(ctx, db); err != nil {
		db.Close()
		restoreErr := fmt.Errorf("failed to migrate restored database: %w", err)

		return "", s.rollback(safetyPath, restoreErr)
	}

	s.db = db

	logger.Info("Restored database from backup", "source", srcPath, "safety", safetyPath)

	return safetyPath, nil
}

// rollback puts the safety copy back in place after a failed restore
// and reopens the store on it. It is called with s.mu held and s.db
// nil.
func (s *Store) rollback(safetyPath string, restoreErr error) error {
	logger.Error("Restore failed, rolling back", "error", restoreErr)

	if err := copyFile(safetyPath, s.path); err != nil {
		return fmt.Errorf("restore failed and rollback failed: %v (original: %w)", err, restoreErr)
	}

	db, err := openDatabase(s.path)
	if err != nil {
		return fmt.Errorf("restore failed and reopen after rollback failed: %v (original: %w)", err, restoreErr)
	}

	s.db = db

	return restoreErr
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()

		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}

	if err := out.Sync(); err != nil {
		out.Close()

		return fmt.Errorf("failed to sync %s: %w", dst, err)
	}

	return out.Close()
}
