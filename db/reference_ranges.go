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

// AddReferenceRange attaches a reference range to a biomarker and
// returns its ID. Each biomarker holds at most one range; the variant
// bounds must already be validated by the caller.
func (s *Store) AddReferenceRange(ctx context.Context, biomarkerID int64, rangeType RangeType, lower, upper *float64) (int64, error) {
	var id int64

	err := s.withRetry("add reference range", func(db *sql.DB) error {
		query := `
			INSERT INTO ReferenceRanges (biomarker_id, range_type, lower_bound, upper_bound)
			VALUES (?, ?, ?, ?)
		`

		res, err := db.ExecContext(ctx, query, biomarkerID, string(rangeType), lower, upper)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: id %d", ErrBiomarkerMissing, biomarkerID)
			}

			return fmt.Errorf("failed to add reference range: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get reference range ID: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// ReferenceRangeForBiomarker returns the range attached to a biomarker,
// or nil when it has none.
func (s *Store) ReferenceRangeForBiomarker(ctx context.Context, biomarkerID int64) (*ReferenceRange, error) {
	db := s.handle()
	if db == nil {
		return nil, ErrStoreClosed
	}

	var r ReferenceRange
	query := `
		SELECT id, biomarker_id, range_type, lower_bound, upper_bound
		FROM ReferenceRanges
		WHERE biomarker_id = ?
	`

	err := db.QueryRowContext(ctx, query, biomarkerID).Scan(
		&r.ID, &r.BiomarkerID, &r.Type, &r.LowerBound, &r.UpperBound,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get reference range: %w", err)
	}

	return &r, nil
}

// AllReferenceRanges returns every stored reference range.
func (s *Store) AllReferenceRanges(ctx context.Context) ([]ReferenceRange, error) {
	db := s.handle()
	if db == nil {
		return nil, ErrStoreClosed
	}

	query := `
		SELECT id, biomarker_id, range_type, lower_bound, upper_bound
		FROM ReferenceRanges
		ORDER BY biomarker_id
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reference ranges: %w", err)
	}
	defer rows.Close()

	var ranges []ReferenceRange
	for rows.Next() {
		var r ReferenceRange
		if err := rows.Scan(&r.ID, &r.BiomarkerID, &r.Type, &r.LowerBound, &r.UpperBound); err != nil {
			return nil, fmt.Errorf("failed to scan reference range: %w", err)
		}
		ranges = append(ranges, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reference ranges: %w", err)
	}

	return ranges, nil
}

// UpdateReferenceRange rewrites a stored range in place. An unknown id
// returns ErrRangeMissing.
func (s *Store) UpdateReferenceRange(ctx context.Context, id int64, rangeType RangeType, lower, upper *float64) error {
	return s.withRetry("update reference range", func(db *sql.DB) error {
		query := `
			UPDATE ReferenceRanges
			SET range_type = ?, lower_bound = ?, upper_bound = ?
			WHERE id = ?
		`

		res, err := db.ExecContext(ctx, query, string(rangeType), lower, upper, id)
		if err != nil {
			return fmt.Errorf("failed to update reference range: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}

		if affected == 0 {
			return ErrRangeMissing
		}

		return nil
	})
}

// UpsertReferenceRange stores a biomarker's range, replacing any
// existing one.
func (s *Store) UpsertReferenceRange(ctx context.Context, biomarkerID int64, rangeType RangeType, lower, upper *float64) error {
	existing, err := s.ReferenceRangeForBiomarker(ctx, biomarkerID)
	if err != nil {
		return err
	}

	if existing != nil {
		return s.UpdateReferenceRange(ctx, existing.ID, rangeType, lower, upper)
	}

	_, err = s.AddReferenceRange(ctx, biomarkerID, rangeType, lower, upper)

	return err
}

// DeleteReferenceRange removes a stored range by its id.
func (s *Store) DeleteReferenceRange(ctx context.Context, id int64) error {
	return s.withRetry("delete reference range", func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `DELETE FROM ReferenceRanges WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete reference range: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check delete result: %w", err)
		}

		if affected == 0 {
			return ErrRangeMissing
		}

		return nil
	})
}
