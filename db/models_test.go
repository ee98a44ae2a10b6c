// SPDX-FileCopyrightText: 2026 Tamsin Wright
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"sort"
	"testing"
	"time"
)

func TestCategoryOrDefault(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		category *string
		want     string
	}{
		{name: "missing", category: nil, want: "Uncategorised"},
		{name: "empty", category: stringPtr(""), want: "Uncategorised"},
		{name: "set", category: stringPtr("Lipids"), want: "Lipids"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			b := Biomarker{Name: "HDL Cholesterol", Unit: "mmol/L", Category: tc.category}
			if got := b.CategoryOrDefault(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestTimestampLayoutOrdersLexicographically(t *testing.T) {
	t.Parallel()

	// Range filters compare stored timestamps as strings, so the layout
	// must keep string order equal to time order. Single digit months,
	// days and hours are the cases that break unpadded layouts.
	times := []time.Time{
		time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, time.January, 2, 5, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 10, 4, 59, 0, 0, time.UTC),
		time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.November, 9, 12, 30, 0, 0, time.UTC),
	}

	formatted := make([]string, 0, len(times))
	for _, ts := range times {
		formatted = append(formatted, ts.Format(TimestampLayout))
	}

	if !sort.StringsAreSorted(formatted) {
		t.Fatalf("expected formatted timestamps to sort chronologically: %v", formatted)
	}
}
