/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// GetEmbeddedMigrations returns the embedded migrations filesystem for use by CLI commands
func GetEmbeddedMigrations() embed.FS {
	return embedMigrations
}

// SyncSchema runs database migrations using goose, then seeds the
// default biomarker catalogue when the Biomarkers table is empty.
func (s *Store) SyncSchema(ctx context.Context) error {
	if err := s.Migrate(ctx); err != nil {
		return err
	}

	// After migrations complete successfully, seed defaults
	seeded, err := s.SeedDefaultBiomarkers(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed default biomarkers: %w", err)
	}

	if seeded > 0 {
		logger.Info("Seeded default biomarker catalogue", "count", seeded)
	}

	return nil
}

// Migrate brings the schema to the latest version without touching
// seed data.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.handle()
	if db == nil {
		return ErrStoreClosed
	}

	return migrateDatabase(ctx, db)
}

// migrateDatabase runs the embedded migrations on db. Callers that
// already hold the store lock use this directly.
func migrateDatabase(ctx context.Context, db *sql.DB) error {
	// Set goose to use embedded migrations
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
