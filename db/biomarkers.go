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

// AddBiomarker inserts a biomarker definition and returns its ID.
// Names are unique; inserting an existing name returns ErrNameExists.
func (s *Store) AddBiomarker(ctx context.Context, name, unit string, category *string) (int64, error) {
	var id int64

	err := s.withRetry("add biomarker", func(db *sql.DB) error {
		query := `
			INSERT INTO Biomarkers (name, unit, category)
			VALUES (?, ?, ?)
		`

		res, err := db.ExecContext(ctx, query, name, unit, category)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %q", ErrNameExists, name)
			}

			return fmt.Errorf("failed to add biomarker: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get biomarker ID: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Debug("Added biomarker", "id", id, "name", name)

	return id, nil
}

// AllBiomarkers returns every biomarker definition, ordered by category
// then name.
func (s *Store) AllBiomarkers(ctx context.Context) ([]Biomarker, error) {
	db := s.handle()
	if db == nil {
		return nil, ErrStoreClosed
	}

	query := `
		SELECT id, name, unit, category
		FROM Biomarkers
		ORDER BY category, name
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list biomarkers: %w", err)
	}
	defer rows.Close()

	var biomarkers []Biomarker
	for rows.Next() {
		var b Biomarker
		if err := rows.Scan(&b.ID, &b.Name, &b.Unit, &b.Category); err != nil {
			return nil, fmt.Errorf("failed to scan biomarker: %w", err)
		}
		biomarkers = append(biomarkers, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating biomarkers: %w", err)
	}

	return biomarkers, nil
}

// Biomarker returns the biomarker with the given ID, or nil when it
// does not exist.
func (s *Store) Biomarker(ctx context.Context, id int64) (*Biomarker, error) {
	db := s.handle()
	if db == nil {
		return nil, ErrStoreClosed
	}

	var b Biomarker
	query := `
		SELECT id, name, unit, category
		FROM Biomarkers
		WHERE id = ?
	`

	err := db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Name, &b.Unit, &b.Category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get biomarker: %w", err)
	}

	return &b, nil
}

// BiomarkerByName returns the biomarker with the given name, or nil
// when it does not exist. Matching is exact.
func (s *Store) BiomarkerByName(ctx context.Context, name string) (*Biomarker, error) {
	db := s.handle()
	if db == nil {
		return nil, ErrStoreClosed
	}

	var b Biomarker
	query := `
		SELECT id, name, unit, category
		FROM Biomarkers
		WHERE name = ?
	`

	err := db.QueryRowContext(ctx, query, name).Scan(&b.ID, &b.Name, &b.Unit, &b.Category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get biomarker by name: %w", err)
	}

	return &b, nil
}

// UpdateBiomarker replaces the definition of an existing biomarker.
// Renaming onto an existing name returns ErrNameExists; an unknown ID
// returns ErrBiomarkerMissing.
func (s *Store) UpdateBiomarker(ctx context.Context, id int64, name, unit string, category *string) error {
	return s.withRetry("update biomarker", func(db *sql.DB) error {
		query := `
			UPDATE Biomarkers
			SET name = ?, unit = ?, category = ?
			WHERE id = ?
		`

		res, err := db.ExecContext(ctx, query, name, unit, category, id)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %q", ErrNameExists, name)
			}

			return fmt.Errorf("failed to update biomarker: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}

		if affected == 0 {
			return ErrBiomarkerMissing
		}

		return nil
	})
}

// DeleteBiomarker removes a biomarker definition. Its readings and
// reference range go with it via ON DELETE CASCADE.
func (s *Store) DeleteBiomarker(ctx context.Context, id int64) error {
	err := s.withRetry("delete biomarker", func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `DELETE FROM Biomarkers WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete biomarker: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check delete result: %w", err)
		}

		if affected == 0 {
			return ErrBiomarkerMissing
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("Deleted biomarker", "id", id)

	return nil
}

// CountBiomarkers returns the number of biomarker definitions.
func (s *Store) CountBiomarkers(ctx context.Context) (int, error) {
	db := s.handle()
	if db == nil {
		return 0, ErrStoreClosed
	}

	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Biomarkers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count biomarkers: %w", err)
	}

	return count, nil
}
