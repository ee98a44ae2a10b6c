// SPDX-FileCopyrightText: 2026 Tamsin Wright
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"errors"
	"testing"
)

func TestAddReadingAndFetch(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "Hemoglobin", "g/dL", stringPtr("Blood"))
	id := mustAddReading(t, store, biomarkerID, "2024-01-15 10:30:00", 14.2)

	got, err := store.Reading(testContext(), id)
	if err != nil {
		t.Fatalf("failed to get reading: %v", err)
	}
	if got == nil {
		t.Fatal("expected reading, got nil")
	}
	if got.BiomarkerID != biomarkerID || got.Timestamp != "2024-01-15 10:30:00" || got.Value != 14.2 {
		t.Fatalf("unexpected reading: %+v", got)
	}
}

func TestAddReadingInvalidTimestamp(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "Hemoglobin", "g/dL", nil)

	_, err := store.AddReading(testContext(), biomarkerID, "15/01/2024 10:30", 14.2)
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}

func TestAddReadingUnknownBiomarker(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.AddReading(testContext(), 4242, "2024-01-15 10:30:00", 14.2)
	if !errors.Is(err, ErrBiomarkerMissing) {
		t.Fatalf("expected ErrBiomarkerMissing, got %v", err)
	}
}

func TestReadingsForBiomarkerOrderedAscending(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "Glucose (Fasting)", "mmol/L", nil)
	mustAddReading(t, store, biomarkerID, "2024-03-01 08:00:00", 5.1)
	mustAddReading(t, store, biomarkerID, "2024-01-01 08:00:00", 4.8)
	mustAddReading(t, store, biomarkerID, "2024-02-01 08:00:00", 5.0)

	readings, err := store.ReadingsForBiomarker(testContext(), biomarkerID, "", "")
	if err != nil {
		t.Fatalf("failed to list readings: %v", err)
	}

	if len(readings) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(readings))
	}
	for i := 1; i < len(readings); i++ {
		if readings[i-1].Timestamp > readings[i].Timestamp {
			t.Fatalf("expected ascending order, got %q before %q",
				readings[i-1].Timestamp, readings[i].Timestamp)
		}
	}
}

func TestReadingsForBiomarkerDateFiltersInclusive(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "Glucose (Fasting)", "mmol/L", nil)
	mustAddReading(t, store, biomarkerID, "2024-01-01 08:00:00", 4.8)
	mustAddReading(t, store, biomarkerID, "2024-02-01 08:00:00", 5.0)
	mustAddReading(t, store, biomarkerID, "2024-03-01 08:00:00", 5.1)

	readings, err := store.ReadingsForBiomarker(testContext(), biomarkerID,
		"2024-01-01 08:00:00", "2024-02-01 08:00:00")
	if err != nil {
		t.Fatalf("failed to list readings: %v", err)
	}

	if len(readings) != 2 {
		t.Fatalf("expected both boundary readings, got %d", len(readings))
	}
	if readings[0].Value != 4.8 || readings[1].Value != 5.0 {
		t.Fatalf("unexpected readings: %+v", readings)
	}

	// Open-ended start.
	readings, err = store.ReadingsForBiomarker(testContext(), biomarkerID, "", "2024-01-31 00:00:00")
	if err != nil {
		t.Fatalf("failed to list readings: %v", err)
	}
	if len(readings) != 1 || readings[0].Value != 4.8 {
		t.Fatalf("expected only the January reading, got %+v", readings)
	}
}

func TestReadingExists(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "TSH", "mIU/L", nil)
	mustAddReading(t, store, biomarkerID, "2024-01-15 10:30:00", 2.1)

	exists, err := store.ReadingExists(testContext(), biomarkerID, "2024-01-15 10:30:00")
	if err != nil {
		t.Fatalf("failed to check existence: %v", err)
	}
	if !exists {
		t.Fatal("expected reading to exist")
	}

	exists, err = store.ReadingExists(testContext(), biomarkerID, "2024-01-15 10:31:00")
	if err != nil {
		t.Fatalf("failed to check existence: %v", err)
	}
	if exists {
		t.Fatal("expected no reading at shifted timestamp")
	}
}

func TestUpdateReading(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "Ferritin", "ng/mL", nil)
	id := mustAddReading(t, store, biomarkerID, "2024-01-15 10:30:00", 88)

	if err := store.UpdateReading(testContext(), id, "2024-01-16 09:00:00", 92); err != nil {
		t.Fatalf("failed to update reading: %v", err)
	}

	got, err := store.Reading(testContext(), id)
	if err != nil {
		t.Fatalf("failed to get reading: %v", err)
	}
	if got.Timestamp != "2024-01-16 09:00:00" || got.Value != 92 {
		t.Fatalf("unexpected reading after update: %+v", got)
	}
}

func TestUpdateReadingInvalidTimestampLeavesRowUnchanged(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "Ferritin", "ng/mL", nil)
	id := mustAddReading(t, store, biomarkerID, "2024-01-15 10:30:00", 88)

	err := store.UpdateReading(testContext(), id, "garbage", 92)
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}

	got, err := store.Reading(testContext(), id)
	if err != nil {
		t.Fatalf("failed to get reading: %v", err)
	}
	if got.Timestamp != "2024-01-15 10:30:00" || got.Value != 88 {
		t.Fatalf("expected unchanged reading, got %+v", got)
	}
}

func TestUpdateMissingReading(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	err := store.UpdateReading(testContext(), 4242, "2024-01-15 10:30:00", 1)
	if !errors.Is(err, ErrReadingMissing) {
		t.Fatalf("expected ErrReadingMissing, got %v", err)
	}
}

func TestDeleteReading(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "Ferritin", "ng/mL", nil)
	id := mustAddReading(t, store, biomarkerID, "2024-01-15 10:30:00", 88)

	if err := store.DeleteReading(testContext(), id); err != nil {
		t.Fatalf("failed to delete reading: %v", err)
	}

	if err := store.DeleteReading(testContext(), id); !errors.Is(err, ErrReadingMissing) {
		t.Fatalf("expected ErrReadingMissing on second delete, got %v", err)
	}
}

func TestLatestReading(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	biomarkerID := mustAddBiomarker(t, store, "Vitamin D", "nmol/L", nil)

	latest, err := store.LatestReading(testContext(), biomarkerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil for biomarker without readings, got %+v", latest)
	}

	mustAddReading(t, store, biomarkerID, "2024-01-01 08:00:00", 60)
	mustAddReading(t, store, biomarkerID, "2024-06-01 08:00:00", 75)
	mustAddReading(t, store, biomarkerID, "2024-03-01 08:00:00", 68)

	latest, err = store.LatestReading(testContext(), biomarkerID)
	if err != nil {
		t.Fatalf("failed to get latest reading: %v", err)
	}
	if latest == nil || latest.Value != 75 {
		t.Fatalf("expected the June reading, got %+v", latest)
	}
}

func TestAllReadingDetailsOrdering(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	sodium := mustAddBiomarker(t, store, "Sodium", "mmol/L", stringPtr("Electrolytes"))
	iron := mustAddBiomarker(t, store, "Iron", "μmol/L", stringPtr("Minerals"))

	mustAddReading(t, store, sodium, "2024-02-01 08:00:00", 140)
	mustAddReading(t, store, iron, "2024-03-01 08:00:00", 18)
	mustAddReading(t, store, iron, "2024-01-01 08:00:00", 15)

	details, err := store.AllReadingDetails(testContext())
	if err != nil {
		t.Fatalf("failed to list reading details: %v", err)
	}

	if len(details) != 3 {
		t.Fatalf("expected 3 details, got %d", len(details))
	}

	// Iron sorts before Sodium; within Iron, timestamps ascend.
	if details[0].BiomarkerName != "Iron" || details[0].Value != 15 {
		t.Fatalf("unexpected first detail: %+v", details[0])
	}
	if details[1].BiomarkerName != "Iron" || details[1].Value != 18 {
		t.Fatalf("unexpected second detail: %+v", details[1])
	}
	if details[2].BiomarkerName != "Sodium" {
		t.Fatalf("unexpected third detail: %+v", details[2])
	}
	if details[2].Unit != "mmol/L" || details[2].Category == nil || *details[2].Category != "Electrolytes" {
		t.Fatalf("expected joined biomarker fields, got %+v", details[2])
	}
}
