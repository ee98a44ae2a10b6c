/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */

//go:build !unix

package db

// freeSpace is unavailable here, so the backup space advisory is
// skipped.
func freeSpace(_ string) (uint64, bool) {
	return 0, false
}
