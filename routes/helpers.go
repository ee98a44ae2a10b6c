/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flamego/flamego"

	"github.com/tamsinw/baseline/db"
)

// parseID reads a positive integer route parameter.
func parseID(c flamego.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}

	return id, nil
}

// parseOptionalFloat reads a form bound that may be left blank.
func parseOptionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}

	return &value, nil
}

// composeTimestamp joins the date and time form fields into the full
// timestamp shape the tracker validates. The time defaults to midnight.
func composeTimestamp(date, timeStr string) string {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		timeStr = "00:00"
	}

	return date + " " + timeStr + ":00"
}

// splitStoredTimestamp breaks a stored timestamp into the date and HH:MM
// values the edit form inputs expect.
func splitStoredTimestamp(timestamp string) (string, string) {
	parsed, err := time.ParseInLocation(db.TimestampLayout, timestamp, time.Local)
	if err != nil {
		return timestamp, ""
	}

	return parsed.Format("2006-01-02"), parsed.Format("15:04")
}

// formatReadingAge renders how long ago a stored reading was taken.
func formatReadingAge(timestamp string) string {
	parsed, err := time.ParseInLocation(db.TimestampLayout, timestamp, time.Local)
	if err != nil {
		return ""
	}

	diff := time.Since(parsed)
	if diff < 0 {
		diff = -diff
	}

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	}
	if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}
	if diff < 30*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	if diff < 365*24*time.Hour {
		return fmt.Sprintf("%dmo ago", int(diff.Hours()/(24*30)))
	}

	return fmt.Sprintf("%dy ago", int(diff.Hours()/(24*365)))
}

// formatValue renders a reading value without trailing zero noise.
func formatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// timeRangeOptions drive the dashboard and detail page range selectors.
var timeRangeOptions = []struct {
	Value string
	Label string
}{
	{"30d", "30 days"},
	{"90d", "90 days"},
	{"6m", "6 months"},
	{"1y", "1 year"},
	{"all", "All time"},
}

// selectedTimeRange normalizes the range query parameter.
func selectedTimeRange(c flamego.Context) string {
	value := c.Query("range")
	for _, option := range timeRangeOptions {
		if option.Value == value {
			return value
		}
	}

	return "6m"
}
