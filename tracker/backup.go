/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package tracker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tamsinw/baseline/db"
)

// backupFilePrefix names on-demand database backups. The timestamp
// suffix keeps repeated backups from colliding.
const backupFilePrefix = "baseline_backup_"

// CreateBackup snapshots the database into a timestamped file and
// returns the file's path. An empty destDir places the file next to
// the database.
func (s *Service) CreateBackup(ctx context.Context, destDir string) (string, error) {
	if destDir == "" {
		destDir = filepath.Dir(s.store.Path())
	}

	filename := backupFilePrefix + time.Now().Format("20060102_150405") + ".db"
	path := filepath.Join(destDir, filename)

	if err := s.store.BackupTo(ctx, path); err != nil {
		return "", err
	}

	return path, nil
}

// RestoreResult describes a completed restore.
type RestoreResult struct {
	Message         string
	AddedBiomarkers int
	SafetyPath      string
}

// RestoreFromFile replaces the database with an uploaded backup,
// preserving biomarker definitions that exist now but not in the
// backup. Definitions are matched by exact name and unit; matching ones
// keep the backup's version, missing ones are re-added to the restored
// database.
func (s *Service) RestoreFromFile(ctx context.Context, uploadedPath string) (*RestoreResult, error) {
	current, err := s.store.AllBiomarkers(ctx)
	if err != nil {
		return nil, err
	}

	safetyPath, err := s.store.RestoreFrom(ctx, uploadedPath)
	if err != nil {
		if errors.Is(err, db.ErrInvalidBackup) {
			return nil, validationWrap("Invalid backup file. Please upload a database backup created by this application.", err)
		}

		return nil, validationWrap("Error replacing database file.", err)
	}

	restored, err := s.store.AllBiomarkers(ctx)
	if err != nil {
		return nil, err
	}

	type definition struct {
		name, unit string
	}

	restoredSet := make(map[definition]bool, len(restored))
	for _, b := range restored {
		restoredSet[definition{b.Name, b.Unit}] = true
	}

	added := 0
	for _, b := range current {
		if restoredSet[definition{b.Name, b.Unit}] {
			continue
		}

		if _, err := s.store.AddBiomarker(ctx, b.Name, b.Unit, b.Category); err != nil {
			logger.Warn("Failed to re-add biomarker after restore", "name", b.Name, "error", err)

			continue
		}

		logger.Debug("Re-added biomarker after restore", "name", b.Name, "unit", b.Unit)
		added++
	}

	return &RestoreResult{
		Message: fmt.Sprintf(
			"Restore successful. Database replaced. %d biomarker definitions preserved from before restore.",
			added),
		AddedBiomarkers: added,
		SafetyPath:      safetyPath,
	}, nil
}
