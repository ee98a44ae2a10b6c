/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import "errors"

var (
	errMigrationNameRequired = errors.New("migration name is required")
	errImportFileRequired    = errors.New("path to a CSV file is required")
	errValidationFailed      = errors.New("CSV validation failed")
	errImportFailed          = errors.New("import failed")
)
