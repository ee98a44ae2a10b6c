/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package db

// TimestampLayout is the canonical form readings are stored in. The
// fixed-width, zero-padded layout keeps lexicographic order identical to
// chronological order, which the range filters rely on.
const TimestampLayout = "2006-01-02 15:04:05"

// Biomarker is a named measurable quantity, e.g. "HDL Cholesterol" in
// "mg/dL".
type Biomarker struct {
	ID       int64   `db:"id"`
	Name     string  `db:"name"`
	Unit     string  `db:"unit"`
	Category *string `db:"category"`
}

// CategoryOrDefault returns the category, or a placeholder when none is
// set.
func (b Biomarker) CategoryOrDefault() string {
	if b.Category == nil || *b.Category == "" {
		return "Uncategorised"
	}
	return *b.Category
}

// Reading is one timestamped observation of a biomarker. Timestamp is
// always in TimestampLayout form.
type Reading struct {
	ID          int64   `db:"id"`
	BiomarkerID int64   `db:"biomarker_id"`
	Timestamp   string  `db:"timestamp"`
	Value       float64 `db:"value"`
}

// ReadingDetail is a reading joined with its biomarker metadata, used by
// the CSV export.
type ReadingDetail struct {
	ReadingID     int64
	BiomarkerID   int64
	BiomarkerName string
	Unit          string
	Category      *string
	Timestamp     string
	Value         float64
}

// RangeType identifies how a reference range is interpreted.
type RangeType string

// RangeType values represent the supported range interpretations.
const (
	// RangeBelow: a value is in range when it is strictly below the
	// upper bound.
	RangeBelow RangeType = "below"
	// RangeAbove: a value is in range when it is strictly above the
	// lower bound.
	RangeAbove RangeType = "above"
	// RangeBetween: a value is in range when it lies between the bounds,
	// inclusive on both ends.
	RangeBetween RangeType = "between"
)

// ReferenceRange is the normal band attached to a biomarker. Bounds are
// nullable; which bound is set depends on the range type.
type ReferenceRange struct {
	ID          int64     `db:"id"`
	BiomarkerID int64     `db:"biomarker_id"`
	Type        RangeType `db:"range_type"`
	LowerBound  *float64  `db:"lower_bound"`
	UpperBound  *float64  `db:"upper_bound"`
}
