// SPDX-FileCopyrightText: 2026 Tamsin Wright
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"errors"
	"testing"
)

func TestAddAndGetReferenceRange(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "Sodium", "mmol/L", nil)

	if _, err := store.AddReferenceRange(testContext(), biomarkerID, RangeBetween, ptr(135), ptr(145)); err != nil {
		t.Fatalf("failed to add reference range: %v", err)
	}

	got, err := store.ReferenceRangeForBiomarker(testContext(), biomarkerID)
	if err != nil {
		t.Fatalf("failed to get reference range: %v", err)
	}
	if got == nil {
		t.Fatal("expected reference range, got nil")
	}
	if got.Type != RangeBetween {
		t.Fatalf("expected between, got %q", got.Type)
	}
	assertFloatPtrEqual(t, got.LowerBound, ptr(135))
	assertFloatPtrEqual(t, got.UpperBound, ptr(145))
}

func TestReferenceRangeForBiomarkerWithoutRange(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "Sodium", "mmol/L", nil)

	got, err := store.ReferenceRangeForBiomarker(testContext(), biomarkerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestAddReferenceRangeUnknownBiomarker(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.AddReferenceRange(testContext(), 4242, RangeAbove, ptr(1), nil)
	if !errors.Is(err, ErrBiomarkerMissing) {
		t.Fatalf("expected ErrBiomarkerMissing, got %v", err)
	}
}

func TestSecondRangeForBiomarkerRejected(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "HDL Cholesterol", "mmol/L", nil)

	if _, err := store.AddReferenceRange(testContext(), biomarkerID, RangeAbove, ptr(0.9), nil); err != nil {
		t.Fatalf("failed to add reference range: %v", err)
	}

	if _, err := store.AddReferenceRange(testContext(), biomarkerID, RangeBelow, nil, ptr(2)); err == nil {
		t.Fatal("expected second range for same biomarker to fail")
	}
}

func TestUpsertReferenceRange(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "LDL Cholesterol", "mmol/L", nil)

	if err := store.UpsertReferenceRange(testContext(), biomarkerID, RangeBelow, nil, ptr(3.1)); err != nil {
		t.Fatalf("failed to upsert new range: %v", err)
	}

	if err := store.UpsertReferenceRange(testContext(), biomarkerID, RangeBetween, ptr(1.5), ptr(3.3)); err != nil {
		t.Fatalf("failed to upsert existing range: %v", err)
	}

	got, err := store.ReferenceRangeForBiomarker(testContext(), biomarkerID)
	if err != nil {
		t.Fatalf("failed to get reference range: %v", err)
	}
	if got.Type != RangeBetween {
		t.Fatalf("expected between after upsert, got %q", got.Type)
	}
	assertFloatPtrEqual(t, got.LowerBound, ptr(1.5))
	assertFloatPtrEqual(t, got.UpperBound, ptr(3.3))

	ranges, err := store.AllReferenceRanges(testContext())
	if err != nil {
		t.Fatalf("failed to list reference ranges: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("expected a single range after upsert, got %d", len(ranges))
	}
}

func TestUpdateReferenceRange(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "LDL Cholesterol", "mmol/L", nil)

	id, err := store.AddReferenceRange(testContext(), biomarkerID, RangeBelow, nil, ptr(3.1))
	if err != nil {
		t.Fatalf("failed to add reference range: %v", err)
	}

	if err := store.UpdateReferenceRange(testContext(), id, RangeBetween, ptr(1.5), ptr(3.3)); err != nil {
		t.Fatalf("failed to update reference range: %v", err)
	}

	got, err := store.ReferenceRangeForBiomarker(testContext(), biomarkerID)
	if err != nil {
		t.Fatalf("failed to get reference range: %v", err)
	}
	if got == nil || got.ID != id {
		t.Fatalf("expected updated range with id %d, got %+v", id, got)
	}
	if got.Type != RangeBetween {
		t.Fatalf("expected between after update, got %q", got.Type)
	}
	assertFloatPtrEqual(t, got.LowerBound, ptr(1.5))
	assertFloatPtrEqual(t, got.UpperBound, ptr(3.3))
}

func TestUpdateReferenceRangeMissing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	err := store.UpdateReferenceRange(testContext(), 4242, RangeBelow, nil, ptr(3.1))
	if !errors.Is(err, ErrRangeMissing) {
		t.Fatalf("expected ErrRangeMissing, got %v", err)
	}
}

func TestDeleteReferenceRange(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "Triglycerides", "mmol/L", nil)

	id, err := store.AddReferenceRange(testContext(), biomarkerID, RangeBelow, nil, ptr(2.1))
	if err != nil {
		t.Fatalf("failed to add reference range: %v", err)
	}

	if err := store.DeleteReferenceRange(testContext(), id); err != nil {
		t.Fatalf("failed to delete reference range: %v", err)
	}

	got, err := store.ReferenceRangeForBiomarker(testContext(), biomarkerID)
	if err != nil {
		t.Fatalf("unexpected error after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no range after delete, got %+v", got)
	}

	if err := store.DeleteReferenceRange(testContext(), id); !errors.Is(err, ErrRangeMissing) {
		t.Fatalf("expected ErrRangeMissing on second delete, got %v", err)
	}
}
