/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/tamsinw/baseline/db"
	"github.com/tamsinw/baseline/tracker"
)

// settingsRow pairs a biomarker with its reference range for the
// management table.
type settingsRow struct {
	Biomarker  db.Biomarker
	Range      *db.ReferenceRange
	RangeLabel string
}

// ========== Settings Handlers ==========

// Settings displays the biomarker management page.
func Settings(c flamego.Context, t template.Template, data template.Data, svc *tracker.Service) {
	data["IsSettings"] = true
	ctx := c.Request().Context()

	biomarkers, err := svc.Biomarkers(ctx)
	if err != nil {
		logger.Error("Failed to load biomarkers", "error", err)
		data["Error"] = "Failed to load biomarkers"
		t.HTML(http.StatusOK, "settings")
		return
	}

	ranges, err := svc.Store().AllReferenceRanges(ctx)
	if err != nil {
		logger.Error("Failed to load reference ranges", "error", err)
		data["Error"] = "Failed to load reference ranges"
		t.HTML(http.StatusOK, "settings")
		return
	}

	rangeByBiomarker := make(map[int64]*db.ReferenceRange, len(ranges))
	for i := range ranges {
		rangeByBiomarker[ranges[i].BiomarkerID] = &ranges[i]
	}

	rows := make([]settingsRow, 0, len(biomarkers))
	var categories []string
	seen := make(map[string]bool)
	for _, biomarker := range biomarkers {
		refRange := rangeByBiomarker[biomarker.ID]
		rows = append(rows, settingsRow{
			Biomarker:  biomarker,
			Range:      refRange,
			RangeLabel: tracker.RangeLabel(refRange),
		})

		if biomarker.Category != nil && *biomarker.Category != "" && !seen[*biomarker.Category] {
			seen[*biomarker.Category] = true
			categories = append(categories, *biomarker.Category)
		}
	}

	data["Biomarkers"] = rows
	data["Categories"] = categories
	t.HTML(http.StatusOK, "settings")
}

// CreateBiomarker adds a new biomarker definition from the settings
// form.
func CreateBiomarker(c flamego.Context, s session.Session, svc *tracker.Service) {
	ctx := c.Request().Context()

	if err := c.Request().ParseForm(); err != nil {
		logger.Error("Failed to parse form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	form := c.Request().Form
	name := strings.TrimSpace(form.Get("name"))
	unit := strings.TrimSpace(form.Get("unit"))
	category := strings.TrimSpace(form.Get("category"))

	_, err := svc.AddBiomarker(ctx, name, unit, category)
	if err != nil {
		if tracker.IsValidationError(err) {
			SetErrorFlash(s, err.Error())
		} else {
			logger.Error("Failed to add biomarker", "name", name, "error", err)
			SetErrorFlash(s, "Failed to add biomarker")
		}
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	SetSuccessFlash(s, "Biomarker added successfully")
	c.Redirect("/settings", http.StatusSeeOther)
}

// UpdateBiomarker changes a biomarker's name, unit or category.
func UpdateBiomarker(c flamego.Context, s session.Session, svc *tracker.Service) {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		SetErrorFlash(s, "Invalid biomarker ID")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	if err := c.Request().ParseForm(); err != nil {
		logger.Error("Failed to parse form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	form := c.Request().Form
	name := strings.TrimSpace(form.Get("name"))
	unit := strings.TrimSpace(form.Get("unit"))
	category := strings.TrimSpace(form.Get("category"))

	err = svc.UpdateBiomarker(ctx, id, name, unit, category)
	if err != nil {
		if tracker.IsValidationError(err) {
			SetErrorFlash(s, err.Error())
		} else {
			logger.Error("Failed to update biomarker", "biomarker_id", id, "error", err)
			SetErrorFlash(s, "Failed to update biomarker")
		}
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	SetSuccessFlash(s, "Biomarker updated successfully")
	c.Redirect("/settings", http.StatusSeeOther)
}

// DeleteBiomarker removes a biomarker definition along with its
// readings and reference range.
func DeleteBiomarker(c flamego.Context, s session.Session, svc *tracker.Service) {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		SetErrorFlash(s, "Invalid biomarker ID")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	err = svc.DeleteBiomarker(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrBiomarkerMissing) {
			SetErrorFlash(s, "Biomarker not found")
		} else {
			logger.Error("Failed to delete biomarker", "biomarker_id", id, "error", err)
			SetErrorFlash(s, "Failed to delete biomarker")
		}
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	SetSuccessFlash(s, "Biomarker deleted")
	c.Redirect("/settings", http.StatusSeeOther)
}

// SetReferenceRange creates or replaces a biomarker's reference range.
func SetReferenceRange(c flamego.Context, s session.Session, svc *tracker.Service) {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		SetErrorFlash(s, "Invalid biomarker ID")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	if err := c.Request().ParseForm(); err != nil {
		logger.Error("Failed to parse form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	form := c.Request().Form
	rangeType := strings.TrimSpace(form.Get("range_type"))

	lower, err := parseOptionalFloat(form.Get("lower_bound"))
	if err != nil {
		SetErrorFlash(s, "Lower bound must be a number")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	upper, err := parseOptionalFloat(form.Get("upper_bound"))
	if err != nil {
		SetErrorFlash(s, "Upper bound must be a number")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	err = svc.SetReferenceRange(ctx, id, rangeType, lower, upper)
	if err != nil {
		if tracker.IsValidationError(err) {
			SetErrorFlash(s, err.Error())
		} else {
			logger.Error("Failed to save reference range", "biomarker_id", id, "error", err)
			SetErrorFlash(s, "Failed to save reference range")
		}
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	SetSuccessFlash(s, "Reference range saved")
	c.Redirect("/settings", http.StatusSeeOther)
}

// DeleteReferenceRange removes a biomarker's reference range.
func DeleteReferenceRange(c flamego.Context, s session.Session, svc *tracker.Service) {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		SetErrorFlash(s, "Invalid biomarker ID")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	err = svc.RemoveReferenceRange(ctx, id)
	if err != nil {
		logger.Error("Failed to remove reference range", "biomarker_id", id, "error", err)
		SetErrorFlash(s, "Failed to remove reference range")
		c.Redirect("/settings", http.StatusSeeOther)
		return
	}

	SetSuccessFlash(s, "Reference range removed")
	c.Redirect("/settings", http.StatusSeeOther)
}
