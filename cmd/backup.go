/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tamsinw/baseline/tracker"
)

var CmdBackup = &cli.Command{
	Name:  "backup",
	Usage: "Snapshot the database into a timestamped backup file",
	Flags: []cli.Flag{
		dataDirFlag(),
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "directory to write the backup into (default: the data directory)",
		},
	},
	Action: runBackup,
}

func runBackup(ctx context.Context, cmd *cli.Command) error {
	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	service := tracker.NewService(store)

	path, err := service.CreateBackup(ctx, cmd.String("output"))
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	fmt.Println(path)
	return nil
}
