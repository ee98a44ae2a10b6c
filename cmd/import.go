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

var CmdImport = &cli.Command{
	Name:      "import",
	Usage:     "Import readings from a CSV file",
	ArgsUsage: "<file.csv>",
	Flags: []cli.Flag{
		dataDirFlag(),
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "validate the file and print the report without importing",
		},
		&cli.BoolFlag{
			Name:  "include-duplicates",
			Usage: "import rows even when an identical reading already exists",
		},
	},
	Action: runImport,
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return errImportFileRequired
	}

	raw, err := os.ReadFile(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read CSV file: %w", err)
	}

	content, err := tracker.DecodeCSVBytes(raw)
	if err != nil {
		return fmt.Errorf("failed to decode CSV file: %w", err)
	}

	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	service := tracker.NewService(store)

	if cmd.Bool("dry-run") {
		validation, err := service.ValidateCSV(ctx, content, true)
		if err != nil {
			return fmt.Errorf("failed to validate CSV: %w", err)
		}

		printValidationReport(validation)
		if !validation.Valid {
			return errValidationFailed
		}

		return nil
	}

	result, err := service.ImportCSV(ctx, content, !cmd.Bool("include-duplicates"))
	if err != nil {
		return fmt.Errorf("failed to import CSV: %w", err)
	}

	fmt.Println(result.Message)
	for _, msg := range result.ErrorMessages {
		fmt.Println("  " + msg)
	}

	if !result.Success {
		return errImportFailed
	}

	return nil
}

func printValidationReport(v *tracker.CSVValidation) {
	fmt.Printf("Rows: %d total, %d valid, %d invalid\n", v.TotalRows, v.ValidRows, v.InvalidRows)

	for _, issue := range v.GeneralIssues {
		fmt.Println("  " + issue)
	}
	for _, issue := range v.ColumnIssues {
		fmt.Println("  " + issue)
	}
	for _, row := range v.RowResults {
		if row.Valid {
			continue
		}
		fmt.Printf("  Row %d: %s\n", row.RowNumber, strings.Join(row.Issues, "; "))
	}

	if v.Valid {
		fmt.Println("File is valid and ready to import")
	}
}
