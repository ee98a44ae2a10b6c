/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/google/uuid"

	"github.com/tamsinw/baseline/tracker"
)

// UploadDir is the directory staged uploads are written to between the
// preview and confirm steps. Mapped into the injector at startup.
type UploadDir string

// Session keys for the two-step CSV import. The staged file name is a
// server-generated UUID; the original name is kept for display only.
const (
	sessionKeyStagedImport     = "staged_import_file"
	sessionKeyStagedImportName = "staged_import_name"
)

// ========== CSV Import Handlers ==========

// UploadImportCSV stages an uploaded CSV file and sends the user to the
// validation preview. Nothing is written to the database here.
func UploadImportCSV(c flamego.Context, s session.Session, dir UploadDir) {
	err := c.Request().ParseMultipartForm(10 << 20)
	if err != nil {
		logger.Error("Error parsing upload form", "error", err)
		SetErrorFlash(s, "Failed to parse upload form")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	file, header, err := c.Request().FormFile("csv_file")
	if err != nil {
		SetErrorFlash(s, "Please choose a CSV file to import")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	defer func() {
		if err := file.Close(); err != nil {
			logger.Error("Error closing CSV upload file", "error", err)
		}
	}()

	logger.Info("Uploading CSV file", "filename", header.Filename, "bytes", header.Size)

	raw, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Error reading CSV upload", "error", err)
		SetErrorFlash(s, "Failed to read uploaded file")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	content, err := tracker.DecodeCSVBytes(raw)
	if err != nil {
		logger.Error("Error decoding CSV upload", "filename", header.Filename, "error", err)
		SetErrorFlash(s, "Could not read the file as text. Please upload a plain CSV file.")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	// Replace any leftover staged import from an abandoned preview.
	clearStagedImport(s, dir)

	if err := os.MkdirAll(string(dir), 0o700); err != nil {
		logger.Error("Error creating upload directory", "dir", string(dir), "error", err)
		SetErrorFlash(s, "Failed to store uploaded file")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	staged := uuid.NewString() + ".csv"
	if err := os.WriteFile(filepath.Join(string(dir), staged), []byte(content), 0o600); err != nil {
		logger.Error("Error staging CSV upload", "error", err)
		SetErrorFlash(s, "Failed to store uploaded file")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	s.Set(sessionKeyStagedImport, staged)
	s.Set(sessionKeyStagedImportName, header.Filename)
	c.Redirect("/settings/import/preview", http.StatusSeeOther)
}

// ImportPreview validates the staged CSV file and shows the result
// before anything is imported. The all=1 query switches the preview to
// every row instead of the usual subset.
func ImportPreview(c flamego.Context, s session.Session, t template.Template, data template.Data, svc *tracker.Service, dir UploadDir) {
	data["IsSettings"] = true
	ctx := c.Request().Context()

	path, err := stagedImportPath(s, dir)
	if err != nil {
		SetErrorFlash(s, "No import in progress. Upload a CSV file first.")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Error reading staged import", "path", path, "error", err)
		clearStagedImport(s, dir)
		SetErrorFlash(s, "No import in progress. Upload a CSV file first.")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	showAll := c.Query("all") == "1"
	validation, err := svc.ValidateCSV(ctx, string(content), showAll)
	if err != nil {
		logger.Error("Error validating staged import", "error", err)
		clearStagedImport(s, dir)
		SetErrorFlash(s, "Failed to validate CSV file")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	data["Validation"] = validation
	data["ShowAll"] = showAll
	if name, ok := s.Get(sessionKeyStagedImportName).(string); ok {
		data["Filename"] = name
	}
	t.HTML(http.StatusOK, "import_preview")
}

// ConfirmImport runs the actual import of the staged CSV file. The
// import itself re-validates, so a file that went invalid since the
// preview still cannot slip through.
func ConfirmImport(c flamego.Context, s session.Session, svc *tracker.Service, dir UploadDir) {
	ctx := c.Request().Context()

	path, err := stagedImportPath(s, dir)
	if err != nil {
		SetErrorFlash(s, "No import in progress. Upload a CSV file first.")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	content, err := os.ReadFile(path)
	clearStagedImport(s, dir)
	if err != nil {
		logger.Error("Error reading staged import", "path", path, "error", err)
		SetErrorFlash(s, "No import in progress. Upload a CSV file first.")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	result, err := svc.ImportCSV(ctx, string(content), true)
	if err != nil {
		logger.Error("Error importing CSV", "error", err)
		SetErrorFlash(s, "Failed to import readings")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	switch {
	case !result.Success:
		SetErrorFlash(s, result.Message)
	case result.Errors > 0 || result.Skipped > 0:
		SetWarningFlash(s, result.Message)
	default:
		SetSuccessFlash(s, result.Message)
	}
	c.Redirect("/settings", http.StatusSeeOther)
}

// CancelImport discards the staged CSV file.
func CancelImport(c flamego.Context, s session.Session, dir UploadDir) {
	clearStagedImport(s, dir)
	SetInfoFlash(s, "Import cancelled")
	c.Redirect("/settings", http.StatusSeeOther)
}

// stagedImportPath resolves the staged import file recorded in the
// session. Only the base name is trusted; the path always stays inside
// the upload directory.
func stagedImportPath(s session.Session, dir UploadDir) (string, error) {
	name, ok := s.Get(sessionKeyStagedImport).(string)
	if !ok || name == "" {
		return "", errNoStagedFile
	}

	return filepath.Join(string(dir), filepath.Base(name)), nil
}

// clearStagedImport removes the staged file and forgets it. Safe to
// call when nothing is staged.
func clearStagedImport(s session.Session, dir UploadDir) {
	if path, err := stagedImportPath(s, dir); err == nil {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Error("Error removing staged import", "path", path, "error", err)
		}
	}

	s.Delete(sessionKeyStagedImport)
	s.Delete(sessionKeyStagedImportName)
}

// ========== Export and Backup Handlers ==========

// ExportReadingsCSV downloads every reading as a CSV file.
func ExportReadingsCSV(c flamego.Context, s session.Session, svc *tracker.Service) {
	ctx := c.Request().Context()

	content, err := svc.ExportCSV(ctx)
	if err != nil {
		logger.Error("Error exporting readings", "error", err)
		SetErrorFlash(s, "Failed to export readings")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	filename := "baseline_readings_" + time.Now().Format("2006-01-02") + ".csv"

	headers := c.ResponseWriter().Header()
	headers.Set("Content-Type", "text/csv; charset=utf-8")
	headers.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	headers.Set("X-Content-Type-Options", "nosniff")
	headers.Set("Content-Length", strconv.Itoa(len(content)))

	c.ResponseWriter().WriteHeader(http.StatusOK)
	if _, err := c.ResponseWriter().Write([]byte(content)); err != nil {
		logger.Error("Error writing CSV export response", "error", err)
	}
}

// DownloadBackup snapshots the database and downloads the backup file.
// The snapshot also stays on disk next to the database.
func DownloadBackup(c flamego.Context, s session.Session, svc *tracker.Service) {
	ctx := c.Request().Context()

	path, err := svc.CreateBackup(ctx, "")
	if err != nil {
		logger.Error("Error creating backup", "error", err)
		SetErrorFlash(s, "Failed to create backup")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	fileData, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Error reading backup file", "path", path, "error", err)
		SetErrorFlash(s, "Failed to read backup file")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	headers := c.ResponseWriter().Header()
	headers.Set("Content-Type", "application/octet-stream")
	headers.Set("Content-Disposition", "attachment; filename=\""+filepath.Base(path)+"\"")
	headers.Set("X-Content-Type-Options", "nosniff")
	headers.Set("Content-Length", strconv.Itoa(len(fileData)))

	c.ResponseWriter().WriteHeader(http.StatusOK)
	if _, err := c.ResponseWriter().Write(fileData); err != nil {
		logger.Error("Error writing backup response", "error", err)
	}
}

// RestoreBackup replaces the database with an uploaded backup file.
func RestoreBackup(c flamego.Context, s session.Session, svc *tracker.Service, dir UploadDir) {
	ctx := c.Request().Context()

	err := c.Request().ParseMultipartForm(64 << 20)
	if err != nil {
		logger.Error("Error parsing restore form", "error", err)
		SetErrorFlash(s, "Failed to parse upload form")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	file, header, err := c.Request().FormFile("backup_file")
	if err != nil {
		SetErrorFlash(s, "Please choose a backup file to restore")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	defer func() {
		if err := file.Close(); err != nil {
			logger.Error("Error closing backup upload file", "error", err)
		}
	}()

	logger.Info("Uploading backup file", "filename", header.Filename, "bytes", header.Size)

	raw, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Error reading backup upload", "error", err)
		SetErrorFlash(s, "Failed to read uploaded file")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	if err := os.MkdirAll(string(dir), 0o700); err != nil {
		logger.Error("Error creating upload directory", "dir", string(dir), "error", err)
		SetErrorFlash(s, "Failed to store uploaded file")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	staged := filepath.Join(string(dir), uuid.NewString()+".db")
	if err := os.WriteFile(staged, raw, 0o600); err != nil {
		logger.Error("Error staging backup upload", "error", err)
		SetErrorFlash(s, "Failed to store uploaded file")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	defer func() {
		if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
			logger.Error("Error removing staged backup", "path", staged, "error", err)
		}
	}()

	result, err := svc.RestoreFromFile(ctx, staged)
	if err != nil {
		if tracker.IsValidationError(err) {
			SetErrorFlash(s, err.Error())
		} else {
			logger.Error("Error restoring backup", "error", err)
			SetErrorFlash(s, "Failed to restore backup")
		}
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	logger.Info("Database restored from backup",
		"filename", header.Filename,
		"preserved_biomarkers", result.AddedBiomarkers,
		"safety_backup", result.SafetyPath)

	SetSuccessFlash(s, result.Message)
	c.Redirect("/settings", http.StatusSeeOther)
}
