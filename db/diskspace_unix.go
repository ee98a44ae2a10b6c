/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */

//go:build unix

package db

import "golang.org/x/sys/unix"

// freeSpace reports the free bytes on the filesystem holding dir.
func freeSpace(dir string) (uint64, bool) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, false
	}

	return stat.Bavail * uint64(stat.Bsize), true
}
