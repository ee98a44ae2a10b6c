/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import "errors"

var (
	// ErrStoreClosed is returned when an operation is attempted on a
	// closed store.
	ErrStoreClosed = errors.New("database store is closed")

	// ErrBusy is returned when the database stayed locked through every
	// retry attempt.
	ErrBusy = errors.New("database is busy")

	// ErrNameExists is returned when a biomarker name collides with an
	// existing one.
	ErrNameExists = errors.New("biomarker name already exists")

	// ErrBiomarkerMissing is returned when a reading or range references
	// a biomarker that does not exist.
	ErrBiomarkerMissing = errors.New("biomarker does not exist")

	// ErrReadingMissing is returned when an operation targets a reading
	// that does not exist.
	ErrReadingMissing = errors.New("reading does not exist")

	// ErrRangeMissing is returned when an operation targets a reference
	// range that does not exist.
	ErrRangeMissing = errors.New("reference range does not exist")

	// ErrInvalidTimestamp is returned when a timestamp string is not in a
	// storable form.
	ErrInvalidTimestamp = errors.New("invalid timestamp format")

	// ErrInvalidBackup is returned when a restore source is not a
	// database produced by this application.
	ErrInvalidBackup = errors.New("invalid backup file format")
)
