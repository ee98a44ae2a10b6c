/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

var CmdSeedRanges = &cli.Command{
	Name:  "seed-ranges",
	Usage: "Apply the curated reference ranges to matching biomarkers",
	Flags: []cli.Flag{
		dataDirFlag(),
	},
	Action: runSeedRanges,
}

func runSeedRanges(ctx context.Context, cmd *cli.Command) error {
	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.SyncReferenceRanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync reference ranges: %w", err)
	}

	fmt.Printf("Reference ranges synced: %d added, %d updated, %d skipped\n",
		result.Added, result.Updated, result.Skipped)
	return nil
}
