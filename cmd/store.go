/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/tamsinw/baseline/db"
)

// dataDirFlag is shared by every command that touches the database.
func dataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Value:   "data",
		Sources: cli.EnvVars("BASELINE_DATA_DIR"),
		Usage:   "directory holding the database, uploads, and backups",
	}
}

func databasePath(dataDir string) string {
	return filepath.Join(dataDir, "baseline.db")
}

// openStore opens the database under the command's data directory and
// brings the schema up to date, seeding the default biomarker
// catalogue on first run.
func openStore(ctx context.Context, cmd *cli.Command) (*db.Store, error) {
	store, err := db.Open(databasePath(cmd.String("data-dir")))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.SyncSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to sync schema: %w", err)
	}

	return store, nil
}
