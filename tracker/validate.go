/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package tracker

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tamsinw/baseline/db"
)

// Reading values beyond this magnitude are rejected as implausible.
const maxReadingMagnitude = 1000000

// invalidNameChars matches anything outside letters, digits,
// underscores, whitespace, hyphens and parentheses.
var invalidNameChars = regexp.MustCompile(`[^\p{L}\p{N}_\s\-()]`)

// timestampLayouts are the accepted input forms, tried in order. The
// slash and dash day-first variants win over month-first for ambiguous
// dates.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"02-01-2006 15:04:05",
	"01-02-2006 15:04:05",
}

// ValidateBiomarkerName checks a biomarker name and returns its trimmed
// form.
func ValidateBiomarkerName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return "", validationErr("Biomarker name cannot be empty.")
	}

	if utf8.RuneCountInString(trimmed) < 2 {
		return "", validationErr("Biomarker name must be at least 2 characters long.")
	}

	if utf8.RuneCountInString(trimmed) > 50 {
		return "", validationErr("Biomarker name cannot exceed 50 characters.")
	}

	if invalidNameChars.MatchString(trimmed) {
		return "", validationErr("Biomarker name contains invalid characters. " +
			"Use only letters, numbers, spaces, hyphens, and parentheses.")
	}

	return trimmed, nil
}

// ValidateBiomarkerUnit checks a measurement unit and returns its
// trimmed form.
func ValidateBiomarkerUnit(unit string) (string, error) {
	trimmed := strings.TrimSpace(unit)

	if trimmed == "" {
		return "", validationErr("Biomarker unit cannot be empty.")
	}

	if utf8.RuneCountInString(trimmed) > 20 {
		return "", validationErr("Biomarker unit cannot exceed 20 characters.")
	}

	return trimmed, nil
}

// ValidateBiomarkerCategory checks an optional category and returns its
// trimmed form, nil when empty.
func ValidateBiomarkerCategory(category string) (*string, error) {
	trimmed := strings.TrimSpace(category)

	if trimmed == "" {
		return nil, nil
	}

	if utf8.RuneCountInString(trimmed) > 30 {
		return nil, validationErr("Biomarker category cannot exceed 30 characters.")
	}

	return &trimmed, nil
}

// ParseReadingValue converts user input to a reading value, enforcing a
// plausibility bound on the magnitude.
func ParseReadingValue(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		return 0, validationErr("Reading value cannot be empty.")
	}

	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(parsed) {
		return 0, validationErr("Reading value must be a number.")
	}

	if parsed < -maxReadingMagnitude || parsed > maxReadingMagnitude {
		return 0, validationErr("Reading value is outside reasonable range.")
	}

	return parsed, nil
}

// NormalizeTimestamp parses a timestamp in any accepted form and
// returns it in the canonical stored layout. A bare date becomes
// midnight. Future timestamps are rejected.
func NormalizeTimestamp(timestamp string) (string, error) {
	trimmed := strings.TrimSpace(timestamp)

	if trimmed == "" {
		return "", validationErr("Timestamp cannot be empty.")
	}

	for _, layout := range timestampLayouts {
		parsed, err := time.ParseInLocation(layout, trimmed, time.Local)
		if err != nil {
			continue
		}

		if parsed.After(time.Now()) {
			return "", validationErr("Timestamp cannot be in the future.")
		}

		return parsed.Format(db.TimestampLayout), nil
	}

	return "", validationErr("Invalid timestamp format. Use YYYY-MM-DD HH:MM:SS or similar format.")
}

// ValidateBiomarkerID checks that an identifier is a usable row ID.
func ValidateBiomarkerID(id int64) error {
	if id <= 0 {
		return validationErr("Invalid biomarker ID.")
	}

	return nil
}

// TimeRangeStart returns the inclusive start timestamp for a dashboard
// time range option, or the empty string when the option covers all
// history. Unknown options fall back to six months.
func TimeRangeStart(option string) string {
	now := time.Now()

	var start time.Time
	switch option {
	case "30d":
		start = now.AddDate(0, 0, -30)
	case "90d":
		start = now.AddDate(0, 0, -90)
	case "6m":
		start = now.AddDate(0, 0, -180)
	case "1y":
		start = now.AddDate(0, 0, -365)
	case "all":
		return ""
	default:
		start = now.AddDate(0, 0, -180)
	}

	return start.Format(db.TimestampLayout)
}
