/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package tracker

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tamsinw/baseline/db"
)

// CSV transfer columns. Biomarker Name, Date and Value are required in
// uploads; Time and Unit are optional.
const (
	colName  = "Biomarker Name"
	colDate  = "Date"
	colTime  = "Time"
	colValue = "Value"
	colUnit  = "Unit"
)

// Preview sizing. Files at or under previewShowAllLimit rows are shown
// whole; larger files show a head/tail window, widened around any
// invalid rows.
const (
	previewShowAllLimit  = 50
	previewEdgeRows      = 25
	previewErrorContext  = 5
	previewErrorEdgeRows = 10
)

// RowResult is the validation outcome for one data row. RowNumber
// counts from 2, the position the row would hold in a file whose first
// line is the header.
type RowResult struct {
	RowNumber int
	Valid     bool
	Issues    []string
}

// PreviewRow is one row of the import preview, carrying the raw field
// values as uploaded.
type PreviewRow struct {
	RowNumber int
	Name      string
	Date      string
	Time      string
	Value     string
	Unit      string
}

// CSVValidation is the full dry-run analysis of an uploaded CSV file.
type CSVValidation struct {
	Valid         bool
	TotalRows     int
	ValidRows     int
	InvalidRows   int
	RowResults    []RowResult
	ColumnIssues  []string
	GeneralIssues []string
	Preview       []PreviewRow

	// ShowingSubset is set when Preview holds a selection rather than
	// the whole file; HasErrors marks a selection built around invalid
	// rows.
	ShowingSubset bool
	HasErrors     bool
}

// ImportResult summarises an import run.
type ImportResult struct {
	Success       bool
	Message       string
	TotalRows     int
	Imported      int
	Errors        int
	Skipped       int
	ErrorMessages []string
}

// csvTable is a parsed CSV upload: the header index and the data
// records. Comment lines starting with '#' and blank lines are
// dropped during parsing.
type csvTable struct {
	columns map[string]int
	width   int
	records [][]string
}

func parseCSVContent(content string) (*csvTable, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no columns to parse from file")
		}

		return nil, err
	}

	table := &csvTable{
		columns: make(map[string]int, len(header)),
		width:   len(header),
	}
	for i, name := range header {
		table.columns[strings.TrimSpace(name)] = i
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(record) > table.width {
			return nil, fmt.Errorf("expected %d fields in row %d, saw %d",
				table.width, len(table.records)+2, len(record))
		}

		table.records = append(table.records, record)
	}

	return table, nil
}

func (t *csvTable) hasColumn(name string) bool {
	_, ok := t.columns[name]

	return ok
}

// field returns the trimmed value of a named column, or "" when the
// column is absent or the record is short.
func (t *csvTable) field(record []string, name string) string {
	idx, ok := t.columns[name]
	if !ok || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}

// biomarkerLookup maps lowercased names, and lowercased name|unit
// pairs, to biomarker IDs.
type biomarkerLookup map[string]int64

func buildBiomarkerLookup(biomarkers []db.Biomarker) biomarkerLookup {
	lookup := make(biomarkerLookup, len(biomarkers)*2)
	for _, b := range biomarkers {
		lookup[strings.ToLower(b.Name)] = b.ID
		if b.Unit != "" {
			lookup[strings.ToLower(b.Name)+"|"+strings.ToLower(b.Unit)] = b.ID
		}
	}

	return lookup
}

// match resolves a row to a biomarker ID, preferring the name+unit
// pairing over name alone. It returns 0 when nothing matches.
func (l biomarkerLookup) match(name, unit string) int64 {
	if unit != "" {
		if id, ok := l[strings.ToLower(name)+"|"+strings.ToLower(unit)]; ok {
			return id
		}
	}

	if id, ok := l[strings.ToLower(name)]; ok {
		return id
	}

	return 0
}

// validateCSVRow checks one data row, collecting every issue rather
// than stopping at the first.
func validateCSVRow(table *csvTable, record []string, rowNumber int, lookup biomarkerLookup) RowResult {
	result := RowResult{RowNumber: rowNumber, Valid: true}

	name := table.field(record, colName)
	date := table.field(record, colDate)
	value := table.field(record, colValue)
	unit := table.field(record, colUnit)

	if name == "" {
		result.Valid = false
		result.Issues = append(result.Issues, "Biomarker Name is required")
	} else if lookup.match(name, unit) == 0 {
		result.Valid = false
		result.Issues = append(result.Issues, fmt.Sprintf("Biomarker '%s' not found", name))
	}

	if date == "" {
		result.Valid = false
		result.Issues = append(result.Issues, "Date is required")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		result.Valid = false
		result.Issues = append(result.Issues, fmt.Sprintf("Invalid date format: '%s'. Use YYYY-MM-DD", date))
	}

	if value == "" {
		result.Valid = false
		result.Issues = append(result.Issues, "Value is required")
	} else if _, err := strconv.ParseFloat(value, 64); err != nil {
		result.Valid = false
		result.Issues = append(result.Issues, fmt.Sprintf("Invalid value: '%s'. Must be a number", value))
	}

	if timeStr := table.field(record, colTime); timeStr != "" {
		if _, err := time.Parse("15:04", timeStr); err != nil {
			result.Valid = false
			result.Issues = append(result.Issues, fmt.Sprintf("Invalid time format: '%s'. Use HH:MM", timeStr))
		}
	}

	return result
}

// ValidateCSV dry-runs an upload: it parses the content, checks every
// row against the stored biomarkers and assembles a preview. Nothing
// is written. The returned error reports storage failures only; file
// problems land inside the result.
func (s *Service) ValidateCSV(ctx context.Context, content string, showAllRows bool) (*CSVValidation, error) {
	result := &CSVValidation{Valid: true}

	table, err := parseCSVContent(content)
	if err != nil {
		result.Valid = false
		result.GeneralIssues = append(result.GeneralIssues, fmt.Sprintf("Error parsing CSV file: %v", err))

		return result, nil
	}

	result.TotalRows = len(table.records)

	var missing []string
	for _, col := range []string{colName, colDate, colValue} {
		if !table.hasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		result.Valid = false
		result.ColumnIssues = append(result.ColumnIssues,
			"Missing required columns: "+strings.Join(missing, ", "))

		return result, nil
	}

	biomarkers, err := s.store.AllBiomarkers(ctx)
	if err != nil {
		return nil, err
	}
	lookup := buildBiomarkerLookup(biomarkers)

	for i, record := range table.records {
		rowResult := validateCSVRow(table, record, i+2, lookup)
		result.RowResults = append(result.RowResults, rowResult)

		if rowResult.Valid {
			result.ValidRows++
		} else {
			result.InvalidRows++
			result.Valid = false
		}
	}

	buildPreview(result, table, showAllRows)

	return result, nil
}

func previewRow(table *csvTable, index int) PreviewRow {
	record := table.records[index]

	return PreviewRow{
		RowNumber: index + 2,
		Name:      table.field(record, colName),
		Date:      table.field(record, colDate),
		Time:      table.field(record, colTime),
		Value:     table.field(record, colValue),
		Unit:      table.field(record, colUnit),
	}
}

// buildPreview fills result.Preview. Small files and explicit requests
// show everything. Larger files show the invalid rows with context when
// there are any, or a head and tail window when the file is clean.
func buildPreview(result *CSVValidation, table *csvTable, showAllRows bool) {
	n := len(table.records)

	if showAllRows || n <= previewShowAllLimit {
		for i := 0; i < n; i++ {
			result.Preview = append(result.Preview, previewRow(table, i))
		}

		return
	}

	var invalid []int
	for i, rowResult := range result.RowResults {
		if !rowResult.Valid {
			invalid = append(invalid, i)
		}
	}

	if len(invalid) > 0 {
		include := make(map[int]bool)
		for _, idx := range invalid {
			for c := idx - previewErrorContext; c <= idx+previewErrorContext; c++ {
				if c >= 0 && c < n {
					include[c] = true
				}
			}
		}
		for i := 0; i < previewErrorEdgeRows && i < n; i++ {
			include[i] = true
		}
		for i := n - previewErrorEdgeRows; i < n; i++ {
			if i >= 0 {
				include[i] = true
			}
		}

		indices := make([]int, 0, len(include))
		for idx := range include {
			indices = append(indices, idx)
		}
		sort.Ints(indices)

		for _, idx := range indices {
			result.Preview = append(result.Preview, previewRow(table, idx))
		}
		result.ShowingSubset = true
		result.HasErrors = true

		return
	}

	first := previewEdgeRows
	if n/2 < first {
		first = n / 2
	}
	last := previewEdgeRows
	if n-first < last {
		last = n - first
	}

	if first+last >= n {
		for i := 0; i < n; i++ {
			result.Preview = append(result.Preview, previewRow(table, i))
		}

		return
	}

	for i := 0; i < first; i++ {
		result.Preview = append(result.Preview, previewRow(table, i))
	}
	for i := n - last; i < n; i++ {
		result.Preview = append(result.Preview, previewRow(table, i))
	}
	result.ShowingSubset = true
}

// ImportCSV imports readings from an upload. The whole file must pass
// validation first; individual rows can still fail during the import
// itself, and when skipDuplicates is set a row whose exact timestamp
// is already recorded for its biomarker is skipped rather than failed.
func (s *Service) ImportCSV(ctx context.Context, content string, skipDuplicates bool) (*ImportResult, error) {
	validation, err := s.ValidateCSV(ctx, content, false)
	if err != nil {
		return nil, err
	}

	if !validation.Valid {
		result := &ImportResult{
			Success:   false,
			Message:   "CSV validation failed. Please fix the issues and try again.",
			TotalRows: validation.TotalRows,
			Errors:    validation.InvalidRows,
		}
		for _, rowResult := range validation.RowResults {
			if !rowResult.Valid {
				result.ErrorMessages = append(result.ErrorMessages,
					fmt.Sprintf("Row %d: %s", rowResult.RowNumber, strings.Join(rowResult.Issues, ", ")))
			}
		}

		return result, nil
	}

	table, err := parseCSVContent(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	biomarkers, err := s.store.AllBiomarkers(ctx)
	if err != nil {
		return nil, err
	}
	lookup := buildBiomarkerLookup(biomarkers)

	result := &ImportResult{TotalRows: validation.TotalRows}

	rowError := func(rowNumber int, message string) {
		result.ErrorMessages = append(result.ErrorMessages, fmt.Sprintf("Row %d: %s", rowNumber, message))
		result.Errors++
	}

	for i, record := range table.records {
		rowNumber := i + 2

		name := table.field(record, colName)
		date := table.field(record, colDate)
		value := table.field(record, colValue)
		unit := table.field(record, colUnit)
		timeStr := table.field(record, colTime)
		if timeStr == "" {
			timeStr = "00:00"
		}

		biomarkerID := lookup.match(name, unit)
		if biomarkerID == 0 {
			rowError(rowNumber, fmt.Sprintf("Biomarker '%s' not found", name))

			continue
		}

		normalized, err := NormalizeTimestamp(date + " " + timeStr + ":00")
		if err != nil {
			rowError(rowNumber, err.Error())

			continue
		}

		if skipDuplicates {
			exists, err := s.store.ReadingExists(ctx, biomarkerID, normalized)
			if err != nil {
				rowError(rowNumber, err.Error())

				continue
			}
			if exists {
				logger.Debug("Skipping duplicate reading", "biomarker", name, "timestamp", normalized)
				result.Skipped++

				continue
			}
		}

		if _, err := s.RecordReading(ctx, biomarkerID, normalized, value); err != nil {
			if IsValidationError(err) {
				rowError(rowNumber, err.Error())
			} else {
				rowError(rowNumber, fmt.Sprintf(
					"Failed to save reading. Database error or biomarker ID %d does not exist.", biomarkerID))
			}

			continue
		}

		result.Imported++
	}

	switch {
	case result.Imported == result.TotalRows:
		result.Success = true
		result.Message = fmt.Sprintf("Successfully imported all %d readings.", result.Imported)

	case result.Imported > 0:
		result.Success = true
		result.Message = fmt.Sprintf("Partially successful: Imported %d out of %d readings.",
			result.Imported, result.TotalRows)
		if result.Errors > 0 {
			result.Message += fmt.Sprintf(" %d errors.", result.Errors)
		}
		if result.Skipped > 0 {
			result.Message += fmt.Sprintf(" %d duplicates skipped.", result.Skipped)
		}

	default:
		result.Success = false
		result.Message = "Import failed: No readings were imported."
		if result.Errors > 0 {
			result.Message += fmt.Sprintf(" %d errors.", result.Errors)
		}
		if result.Skipped > 0 {
			result.Message += fmt.Sprintf(" %d duplicates skipped.", result.Skipped)
		}
	}

	logger.Info("CSV import finished",
		"total", result.TotalRows, "imported", result.Imported,
		"errors", result.Errors, "skipped", result.Skipped)

	return result, nil
}

// ExportCSV renders every reading as CSV, ordered by biomarker name
// then timestamp. An empty database yields the header and a comment.
func (s *Service) ExportCSV(ctx context.Context) (string, error) {
	details, err := s.store.AllReadingDetails(ctx)
	if err != nil {
		return "", err
	}

	if len(details) == 0 {
		return "Biomarker Name,Date,Time,Value,Unit\n# No readings found", nil
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{colName, colDate, colTime, colValue, colUnit}); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, detail := range details {
		datePart, timePart := splitTimestamp(detail.Timestamp)
		record := []string{
			detail.BiomarkerName,
			datePart,
			timePart,
			strconv.FormatFloat(detail.Value, 'f', -1, 64),
			detail.Unit,
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}

	return buf.String(), nil
}

// splitTimestamp breaks a stored timestamp into the export date and
// HH:MM time parts, falling back to a string split for anything that
// does not parse.
func splitTimestamp(timestamp string) (string, string) {
	if strings.Contains(timestamp, " ") {
		if parsed, err := time.Parse(db.TimestampLayout, timestamp); err == nil {
			return parsed.Format("2006-01-02"), parsed.Format("15:04")
		}

		parts := strings.SplitN(timestamp, " ", 2)
		timePart := parts[1]
		if i := strings.LastIndex(timePart, ":"); i > 0 {
			timePart = timePart[:i]
		}

		return parts[0], timePart
	}

	if parsed, err := time.Parse("2006-01-02", timestamp); err == nil {
		return parsed.Format("2006-01-02"), parsed.Format("15:04")
	}

	return timestamp, "00:00"
}
