// SPDX-FileCopyrightText: 2026 Tamsin Wright
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tamsinw/baseline/db"
)

func TestCreateBackup(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	mustAddBiomarker(t, service, "Ferritin", "ng/mL", "")

	path, err := service.CreateBackup(testContext(), "")
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	if filepath.Dir(path) != filepath.Dir(service.Store().Path()) {
		t.Fatalf("expected backup next to database, got %q", path)
	}
	if name := filepath.Base(path); !strings.HasPrefix(name, "baseline_backup_") || !strings.HasSuffix(name, ".db") {
		t.Fatalf("unexpected backup name %q", name)
	}

	if err := db.ValidateBackupFile(path); err != nil {
		t.Fatalf("backup does not validate: %v", err)
	}
}

func TestRestoreFromFilePreservesNewBiomarkers(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	ferritin := mustAddBiomarker(t, service, "Ferritin", "ng/mL", "Blood")
	mustRecordReading(t, service, ferritin, "2024-01-15 10:30:00", "88")

	backupPath, err := service.CreateBackup(testContext(), "")
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	// Diverge after the backup: a new definition and a new reading.
	zinc := mustAddBiomarker(t, service, "Zinc", "μmol/L", "")
	mustRecordReading(t, service, zinc, "2024-02-01 08:00:00", "14")

	result, err := service.RestoreFromFile(testContext(), backupPath)
	if err != nil {
		t.Fatalf("failed to restore: %v", err)
	}

	if result.AddedBiomarkers != 1 {
		t.Fatalf("expected 1 preserved definition, got %d", result.AddedBiomarkers)
	}
	want := "Restore successful. Database replaced. 1 biomarker definitions preserved from before restore."
	if result.Message != want {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if result.SafetyPath == "" {
		t.Fatalf("expected a safety backup path")
	}
	if _, err := os.Stat(result.SafetyPath); err != nil {
		t.Fatalf("safety backup missing: %v", err)
	}

	// The Zinc definition survives, its post-backup reading does not.
	restored, err := service.Store().BiomarkerByName(testContext(), "Zinc")
	if err != nil {
		t.Fatalf("failed to get biomarker: %v", err)
	}
	if restored == nil || restored.Unit != "μmol/L" {
		t.Fatalf("expected preserved Zinc definition, got %+v", restored)
	}
	readings, err := service.Store().ReadingsForBiomarker(testContext(), restored.ID, "", "")
	if err != nil {
		t.Fatalf("failed to list readings: %v", err)
	}
	if len(readings) != 0 {
		t.Fatalf("expected no readings for re-added biomarker, got %d", len(readings))
	}

	// The backed up reading is back.
	restoredFerritin, err := service.Store().BiomarkerByName(testContext(), "Ferritin")
	if err != nil {
		t.Fatalf("failed to get biomarker: %v", err)
	}
	latest, err := service.Store().LatestReading(testContext(), restoredFerritin.ID)
	if err != nil {
		t.Fatalf("failed to get latest reading: %v", err)
	}
	if latest == nil || latest.Value != 88 {
		t.Fatalf("expected restored ferritin reading, got %+v", latest)
	}
}

func TestRestoreFromFileNoNewDefinitions(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	mustAddBiomarker(t, service, "Ferritin", "ng/mL", "")

	backupPath, err := service.CreateBackup(testContext(), "")
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	result, err := service.RestoreFromFile(testContext(), backupPath)
	if err != nil {
		t.Fatalf("failed to restore: %v", err)
	}

	want := "Restore successful. Database replaced. 0 biomarker definitions preserved from before restore."
	if result.Message != want {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestRestoreFromFileRejectsInvalidUpload(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	mustAddBiomarker(t, service, "Ferritin", "ng/mL", "")

	garbage := filepath.Join(t.TempDir(), "notes.db")
	if err := os.WriteFile(garbage, []byte("not a database"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := service.RestoreFromFile(testContext(), garbage)
	assertValidationMessage(t, err,
		"Invalid backup file. Please upload a database backup created by this application.")
	if !errors.Is(err, db.ErrInvalidBackup) {
		t.Fatalf("expected wrapped ErrInvalidBackup, got %v", err)
	}

	// The live database is untouched.
	got, berr := service.Store().BiomarkerByName(testContext(), "Ferritin")
	if berr != nil {
		t.Fatalf("failed to get biomarker: %v", berr)
	}
	if got == nil {
		t.Fatal("expected live data to survive a rejected restore")
	}
}

func TestRestoreFromFileKeepsServiceUsable(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	mustAddBiomarker(t, service, "Ferritin", "ng/mL", "")

	backupPath, err := service.CreateBackup(testContext(), "")
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	if _, err := service.RestoreFromFile(testContext(), backupPath); err != nil {
		t.Fatalf("failed to restore: %v", err)
	}

	id := mustAddBiomarker(t, service, "Sodium", "mmol/L", "")
	if _, err := service.RecordReading(testContext(), id, "2024-03-01", "140"); err != nil {
		t.Fatalf("service unusable after restore: %v", err)
	}
}
