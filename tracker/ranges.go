/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package tracker

import (
	"context"
	"fmt"

	"github.com/tamsinw/baseline/db"
)

// RangeSpec is a reference range whose variant rules have been checked:
// a below range carries only an upper bound, an above range only a
// lower bound, and a between range both with lower strictly less than
// upper.
type RangeSpec struct {
	Type  db.RangeType
	Lower *float64
	Upper *float64
}

// NewRangeSpec validates raw range input into a RangeSpec. Bounds that
// the variant does not use are dropped.
func NewRangeSpec(rangeType string, lower, upper *float64) (RangeSpec, error) {
	switch db.RangeType(rangeType) {
	case db.RangeBelow:
		if upper == nil {
			return RangeSpec{}, validationErr("Upper bound is required for 'below' range type")
		}

		return RangeSpec{Type: db.RangeBelow, Upper: upper}, nil

	case db.RangeAbove:
		if lower == nil {
			return RangeSpec{}, validationErr("Lower bound is required for 'above' range type")
		}

		return RangeSpec{Type: db.RangeAbove, Lower: lower}, nil

	case db.RangeBetween:
		if lower == nil || upper == nil {
			return RangeSpec{}, validationErr("Both lower and upper bounds are required for 'between' range type")
		}

		if *lower >= *upper {
			return RangeSpec{}, validationErr("Lower bound must be less than upper bound")
		}

		return RangeSpec{Type: db.RangeBetween, Lower: lower, Upper: upper}, nil

	default:
		return RangeSpec{}, validationErr("Invalid range type. Must be one of: below, above, between")
	}
}

// SetReferenceRange validates and stores a biomarker's reference range,
// replacing any existing one.
func (s *Service) SetReferenceRange(ctx context.Context, biomarkerID int64, rangeType string, lower, upper *float64) error {
	if err := ValidateBiomarkerID(biomarkerID); err != nil {
		return err
	}

	spec, err := NewRangeSpec(rangeType, lower, upper)
	if err != nil {
		return err
	}

	err = s.store.UpsertReferenceRange(ctx, biomarkerID, spec.Type, spec.Lower, spec.Upper)
	if err != nil {
		return validationWrap("Failed to update reference range", err)
	}

	return nil
}

// ReferenceRangeFor returns a biomarker's reference range, or nil when
// none is set.
func (s *Service) ReferenceRangeFor(ctx context.Context, biomarkerID int64) (*db.ReferenceRange, error) {
	return s.store.ReferenceRangeForBiomarker(ctx, biomarkerID)
}

// RemoveReferenceRange deletes a biomarker's reference range. A
// biomarker without one returns db.ErrRangeMissing.
func (s *Service) RemoveReferenceRange(ctx context.Context, biomarkerID int64) error {
	r, err := s.store.ReferenceRangeForBiomarker(ctx, biomarkerID)
	if err != nil {
		return err
	}

	if r == nil {
		return fmt.Errorf("%w: biomarker %d", db.ErrRangeMissing, biomarkerID)
	}

	return s.store.DeleteReferenceRange(ctx, r.ID)
}

// IsValueInRange judges a value against a reference range. It returns
// nil when there is no range or the range cannot be judged; below and
// above compare strictly, between includes both ends.
func IsValueInRange(value float64, r *db.ReferenceRange) *bool {
	if r == nil {
		return nil
	}

	var in bool
	switch r.Type {
	case db.RangeBelow:
		if r.UpperBound == nil {
			return nil
		}
		in = value < *r.UpperBound

	case db.RangeAbove:
		if r.LowerBound == nil {
			return nil
		}
		in = value > *r.LowerBound

	case db.RangeBetween:
		if r.LowerBound == nil || r.UpperBound == nil {
			return nil
		}
		in = *r.LowerBound <= value && value <= *r.UpperBound

	default:
		return nil
	}

	return &in
}

// RangeLabel renders a reference range for display, like "< 3.1",
// "> 0.9" or "135 – 145".
func RangeLabel(r *db.ReferenceRange) string {
	if r == nil {
		return ""
	}

	switch r.Type {
	case db.RangeBelow:
		if r.UpperBound == nil {
			return ""
		}

		return fmt.Sprintf("< %g", *r.UpperBound)

	case db.RangeAbove:
		if r.LowerBound == nil {
			return ""
		}

		return fmt.Sprintf("> %g", *r.LowerBound)

	case db.RangeBetween:
		if r.LowerBound == nil || r.UpperBound == nil {
			return ""
		}

		return fmt.Sprintf("%g - %g", *r.LowerBound, *r.UpperBound)
	}

	return ""
}
