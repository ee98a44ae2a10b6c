/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tamsinw/baseline/tracker"
)

var CmdExport = &cli.Command{
	Name:      "export",
	Usage:     "Export all readings as CSV",
	ArgsUsage: "[output.csv]",
	Flags: []cli.Flag{
		dataDirFlag(),
	},
	Action: runExport,
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	service := tracker.NewService(store)

	content, err := service.ExportCSV(ctx)
	if err != nil {
		return fmt.Errorf("failed to export readings: %w", err)
	}

	if out := cmd.Args().First(); out != "" {
		if err := os.WriteFile(out, []byte(content), 0o600); err != nil {
			return fmt.Errorf("failed to write CSV file: %w", err)
		}

		appLogger.Info("Exported readings", "path", out)
		return nil
	}

	fmt.Println(strings.TrimSuffix(content, "\n"))
	return nil
}
