/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/tamsinw/baseline/cmd"
)

func main() {
	app := &cli.Command{
		Name:  "baseline",
		Usage: "Baseline - Personal Health Tracker",
		Commands: []*cli.Command{
			cmd.CmdStart,
			cmd.CmdMigrate,
			cmd.CmdImport,
			cmd.CmdExport,
			cmd.CmdBackup,
			cmd.CmdSeedRanges,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
