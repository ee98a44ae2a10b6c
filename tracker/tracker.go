/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/tamsinw/baseline/db"
)

// Service applies the tracking rules on top of a store. All user input
// passes through here; the store below only sees cleaned values.
type Service struct {
	store *db.Store
}

// NewService returns a service over the given store.
func NewService(store *db.Store) *Service {
	return &Service{store: store}
}

// Store exposes the underlying store for read paths that need no rule
// handling, such as the migrate and export commands.
func (s *Service) Store() *db.Store {
	return s.store
}

// AddBiomarker validates and stores a new biomarker definition and
// returns its ID.
func (s *Service) AddBiomarker(ctx context.Context, name, unit, category string) (int64, error) {
	cleanedName, err := ValidateBiomarkerName(name)
	if err != nil {
		return 0, err
	}

	cleanedUnit, err := ValidateBiomarkerUnit(unit)
	if err != nil {
		return 0, err
	}

	cleanedCategory, err := ValidateBiomarkerCategory(category)
	if err != nil {
		return 0, err
	}

	id, err := s.store.AddBiomarker(ctx, cleanedName, cleanedUnit, cleanedCategory)
	if err != nil {
		if errors.Is(err, db.ErrNameExists) {
			return 0, validationWrap(fmt.Sprintf(
				"Failed to add biomarker '%s'. It might already exist or there was a database error.",
				cleanedName), err)
		}

		return 0, err
	}

	return id, nil
}

// Biomarkers returns every biomarker definition, ordered by category
// then name.
func (s *Service) Biomarkers(ctx context.Context) ([]db.Biomarker, error) {
	return s.store.AllBiomarkers(ctx)
}

// Biomarker returns a single biomarker definition, or nil when it does
// not exist.
func (s *Service) Biomarker(ctx context.Context, id int64) (*db.Biomarker, error) {
	return s.store.Biomarker(ctx, id)
}

// UpdateBiomarker validates and stores a changed biomarker definition.
func (s *Service) UpdateBiomarker(ctx context.Context, id int64, name, unit, category string) error {
	cleanedName, err := ValidateBiomarkerName(name)
	if err != nil {
		return err
	}

	cleanedUnit, err := ValidateBiomarkerUnit(unit)
	if err != nil {
		return err
	}

	cleanedCategory, err := ValidateBiomarkerCategory(category)
	if err != nil {
		return err
	}

	err = s.store.UpdateBiomarker(ctx, id, cleanedName, cleanedUnit, cleanedCategory)
	if err != nil {
		if errors.Is(err, db.ErrNameExists) || errors.Is(err, db.ErrBiomarkerMissing) {
			return validationWrap(fmt.Sprintf(
				"Failed to update biomarker ID %d. The name '%s' might already exist or there was a database error.",
				id, cleanedName), err)
		}

		return err
	}

	return nil
}

// DeleteBiomarker removes a biomarker definition along with its
// readings and reference range.
func (s *Service) DeleteBiomarker(ctx context.Context, id int64) error {
	return s.store.DeleteBiomarker(ctx, id)
}

// RecordReading validates raw reading input and stores it, returning
// the reading ID. The timestamp may arrive in any accepted form.
func (s *Service) RecordReading(ctx context.Context, biomarkerID int64, timestamp, value string) (int64, error) {
	if err := ValidateBiomarkerID(biomarkerID); err != nil {
		return 0, err
	}

	parsedValue, err := ParseReadingValue(value)
	if err != nil {
		return 0, err
	}

	normalized, err := NormalizeTimestamp(timestamp)
	if err != nil {
		return 0, err
	}

	id, err := s.store.AddReading(ctx, biomarkerID, normalized, parsedValue)
	if err != nil {
		if errors.Is(err, db.ErrBiomarkerMissing) {
			return 0, validationWrap(fmt.Sprintf(
				"Failed to save reading. Database error or biomarker ID %d does not exist.",
				biomarkerID), err)
		}

		return 0, err
	}

	return id, nil
}

// UpdateReading validates and stores changed reading input.
func (s *Service) UpdateReading(ctx context.Context, readingID int64, timestamp, value string) error {
	parsedValue, err := ParseReadingValue(value)
	if err != nil {
		return err
	}

	normalized, err := NormalizeTimestamp(timestamp)
	if err != nil {
		return err
	}

	err = s.store.UpdateReading(ctx, readingID, normalized, parsedValue)
	if err != nil {
		if errors.Is(err, db.ErrReadingMissing) {
			return validationWrap(fmt.Sprintf(
				"Failed to update reading ID %d. The reading might not exist or there was a database error.",
				readingID), err)
		}

		return err
	}

	return nil
}

// DeleteReading removes a single reading.
func (s *Service) DeleteReading(ctx context.Context, readingID int64) error {
	if readingID <= 0 {
		return validationErr("Invalid reading ID")
	}

	err := s.store.DeleteReading(ctx, readingID)
	if err != nil {
		if errors.Is(err, db.ErrReadingMissing) {
			return validationWrap(fmt.Sprintf("Reading with ID %d not found", readingID), err)
		}

		return err
	}

	return nil
}

// Reading returns a single reading, or nil when it does not exist.
func (s *Service) Reading(ctx context.Context, readingID int64) (*db.Reading, error) {
	return s.store.Reading(ctx, readingID)
}

// ReadingsInRange returns a biomarker's readings inside a dashboard
// time range option, oldest first.
func (s *Service) ReadingsInRange(ctx context.Context, biomarkerID int64, option string) ([]db.Reading, error) {
	return s.store.ReadingsForBiomarker(ctx, biomarkerID, TimeRangeStart(option), "")
}

// BiomarkerSummary is one dashboard card: a biomarker, its most recent
// reading and how that reading sits against the reference range.
type BiomarkerSummary struct {
	Biomarker db.Biomarker
	Latest    *db.Reading
	Range     *db.ReferenceRange

	// InRange is nil when there is no reading or no range to judge
	// against.
	InRange *bool
}

// Summaries assembles the dashboard card data for every biomarker.
func (s *Service) Summaries(ctx context.Context) ([]BiomarkerSummary, error) {
	biomarkers, err := s.store.AllBiomarkers(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]BiomarkerSummary, 0, len(biomarkers))
	for _, biomarker := range biomarkers {
		summary := BiomarkerSummary{Biomarker: biomarker}

		summary.Latest, err = s.store.LatestReading(ctx, biomarker.ID)
		if err != nil {
			return nil, err
		}

		summary.Range, err = s.store.ReferenceRangeForBiomarker(ctx, biomarker.ID)
		if err != nil {
			return nil, err
		}

		if summary.Latest != nil {
			summary.InRange = IsValueInRange(summary.Latest.Value, summary.Range)
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}
