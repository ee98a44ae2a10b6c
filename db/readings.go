/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddReading inserts a timestamped value for a biomarker and returns
// the reading ID. The timestamp must already be normalised to a
// storable form; an unknown biomarker returns ErrBiomarkerMissing.
func (s *Store) AddReading(ctx context.Context, biomarkerID int64, timestamp string, value float64) (int64, error) {
	if !isValidTimestamp(timestamp) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, timestamp)
	}

	var id int64

	err := s.withRetry("add reading", func(db *sql.DB) error {
		query := `
			INSERT INTO Readings (biomarker_id, timestamp, value)
			VALUES (?, ?, ?)
		`

		res, err := db.ExecContext(ctx, query, biomarkerID, timestamp, value)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: id %d", ErrBiomarkerMissing, biomarkerID)
			}

			return fmt.Errorf("failed to add reading: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get reading ID: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Debug("Added reading", "id", id, "biomarker", biomarkerID, "timestamp", timestamp)

	return id, nil
}

// ReadingsForBiomarker returns a biomarker's readings in ascending
// timestamp order. Empty start or end means unbounded on that side;
// both bounds are inclusive.
func (s *Store) ReadingsForBiomarker(ctx context.Context, biomarkerID int64, start, end string) ([]Reading, error) {
	db := s.handle()
	if db == nil {
		return nil, ErrStoreClosed
	}

	query := `
		SELECT id, biomarker_id, timestamp, value
		FROM Readings
		WHERE biomarker_id = ?
	`
	args := []any{biomarkerID}

	if start != "" {
		query += " AND timestamp >= ?"
		args = append(args, start)
	}

	if end != "" {
		query += " AND timestamp <= ?"
		args = append(args, end)
	}

	query += " ORDER BY timestamp ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var r Reading
		if err := rows.Scan(&r.ID, &r.BiomarkerID, &r.Timestamp, &r.Value); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating readings: %w", err)
	}

	return readings, nil
}

// Reading returns the reading with the given ID, or nil when it does
// not exist.
func (s *Store) Reading(ctx context.Context, id int64) (*Reading, error) {
	db := s.handle()
	if db == nil {
		return nil, ErrStoreClosed
	}

	var r Reading
	query := `
		SELECT id, biomarker_id, timestamp, value
		FROM Readings
		WHERE id = ?
	`

	err := db.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.BiomarkerID, &r.Timestamp, &r.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get reading: %w", err)
	}

	return &r, nil
}

// LatestReading returns a biomarker's most recent reading, or nil when
// it has none.
func (s *Store) LatestReading(ctx context.Context, biomarkerID int64) (*Reading, error) {
	db := s.handle()
	if db == nil {
		return nil, ErrStoreClosed
	}

	var r Reading
	query := `
		SELECT id, biomarker_id, timestamp, value
		FROM Readings
		WHERE biomarker_id = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`

	err := db.QueryRowContext(ctx, query, biomarkerID).Scan(&r.ID, &r.BiomarkerID, &r.Timestamp, &r.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get latest reading: %w", err)
	}

	return &r, nil
}

// ReadingExists reports whether a biomarker already has a reading at
// the exact timestamp. Import uses this to skip duplicates.
func (s *Store) ReadingExists(ctx context.Context, biomarkerID int64, timestamp string) (bool, error) {
	db := s.handle()
	if db == nil {
		return false, ErrStoreClosed
	}

	var one int
	query := `
		SELECT 1
		FROM Readings
		WHERE biomarker_id = ? AND timestamp = ?
		LIMIT 1
	`

	err := db.QueryRowContext(ctx, query, biomarkerID, timestamp).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("failed to check reading existence: %w", err)
	}

	return true, nil
}

// UpdateReading replaces the value and timestamp of an existing
// reading. An unknown ID returns ErrReadingMissing.
func (s *Store) UpdateReading(ctx context.Context, id int64, timestamp string, value float64) error {
	if !isValidTimestamp(timestamp) {
		return fmt.Errorf("%w: %q", ErrInvalidTimestamp, timestamp)
	}

	return s.withRetry("update reading", func(db *sql.DB) error {
		query := `
			UPDATE Readings
			SET timestamp = ?, value = ?
			WHERE id = ?
		`

		res, err := db.ExecContext(ctx, query, timestamp, value, id)
		if err != nil {
			return fmt.Errorf("failed to update reading: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}

		if affected == 0 {
			return ErrReadingMissing
		}

		return nil
	})
}

// DeleteReading removes a single reading.
func (s *Store) DeleteReading(ctx context.Context, id int64) error {
	return s.withRetry("delete reading", func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `DELETE FROM Readings WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete reading: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check delete result: %w", err)
		}

		if affected == 0 {
			return ErrReadingMissing
		}

		return nil
	})
}

// AllReadingDetails returns every reading joined with its biomarker,
// ordered by biomarker name then timestamp. Export walks this list.
func (s *Store) AllReadingDetails(ctx context.Context) ([]ReadingDetail, error) {
	db := s.handle()
	if db == nil {
		return nil, ErrStoreClosed
	}

	query := `
		SELECT r.id, r.biomarker_id, b.name, b.unit, b.category, r.timestamp, r.value
		FROM Readings r
		JOIN Biomarkers b ON b.id = r.biomarker_id
		ORDER BY b.name, r.timestamp
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reading details: %w", err)
	}
	defer rows.Close()

	var details []ReadingDetail
	for rows.Next() {
		var d ReadingDetail
		err := rows.Scan(
			&d.ReadingID, &d.BiomarkerID, &d.BiomarkerName, &d.Unit, &d.Category,
			&d.Timestamp, &d.Value,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading detail: %w", err)
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reading details: %w", err)
	}

	return details, nil
}
