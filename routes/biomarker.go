/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	htmltemplate "html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/tamsinw/baseline/tracker"
)

// readingRow is one line of the reading history table, with the stored
// timestamp split for the inline edit form.
type readingRow struct {
	ID      int64
	Date    string
	Time    string
	Value   string
	Age     string
	InRange *bool
}

// ========== Biomarker Page Handlers ==========

// ViewBiomarker displays one biomarker with its trend chart and full
// reading history, newest first.
func ViewBiomarker(c flamego.Context, s session.Session, t template.Template, data template.Data, svc *tracker.Service) {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		SetErrorFlash(s, "Invalid biomarker ID")
		c.Redirect("/", http.StatusSeeOther)
		return
	}

	biomarker, err := svc.Biomarker(ctx, id)
	if err != nil {
		logger.Error("Failed to load biomarker", "biomarker_id", id, "error", err)
		SetErrorFlash(s, "Failed to load biomarker")
		c.Redirect("/", http.StatusSeeOther)
		return
	}
	if biomarker == nil {
		SetErrorFlash(s, "Biomarker not found")
		c.Redirect("/", http.StatusSeeOther)
		return
	}

	data["Biomarker"] = biomarker
	data["Today"] = time.Now().Format("2006-01-02")
	timeRange := selectedTimeRange(c)
	data["TimeRange"] = timeRange
	data["TimeRangeOptions"] = timeRangeOptions

	refRange, err := svc.ReferenceRangeFor(ctx, id)
	if err != nil {
		logger.Error("Failed to load reference range", "biomarker_id", id, "error", err)
	} else if refRange != nil {
		data["Range"] = refRange
		data["RangeLabel"] = tracker.RangeLabel(refRange)
	}

	windowed, err := svc.ReadingsInRange(ctx, id, timeRange)
	if err != nil {
		logger.Error("Failed to load readings for chart", "biomarker_id", id, "error", err)
	} else {
		chart, err := renderTrendChart(*biomarker, windowed, refRange)
		if err != nil {
			logger.Error("Failed to render trend chart", "biomarker_id", id, "error", err)
		} else if chart != "" {
			data["Chart"] = htmltemplate.HTML(chart)
		}
	}

	all, err := svc.ReadingsInRange(ctx, id, "all")
	if err != nil {
		logger.Error("Failed to load readings", "biomarker_id", id, "error", err)
		data["Error"] = "Failed to load readings"
		t.HTML(http.StatusOK, "biomarker_view")
		return
	}

	rows := make([]readingRow, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		r := all[i]
		date, timeStr := splitStoredTimestamp(r.Timestamp)
		rows = append(rows, readingRow{
			ID:      r.ID,
			Date:    date,
			Time:    timeStr,
			Value:   formatValue(r.Value),
			Age:     formatReadingAge(r.Timestamp),
			InRange: tracker.IsValueInRange(r.Value, refRange),
		})
	}

	data["Readings"] = rows
	data["ReadingCount"] = len(rows)
	t.HTML(http.StatusOK, "biomarker_view")
}

// CreateReading records a new reading from the biomarker page form.
func CreateReading(c flamego.Context, s session.Session, svc *tracker.Service) {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		SetErrorFlash(s, "Invalid biomarker ID")
		c.Redirect("/", http.StatusSeeOther)
		return
	}
	redirect := "/biomarkers/" + strconv.FormatInt(id, 10)

	if err := c.Request().ParseForm(); err != nil {
		logger.Error("Failed to parse form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect(redirect, http.StatusSeeOther)
		return
	}

	form := c.Request().Form
	timestamp := composeTimestamp(
		strings.TrimSpace(form.Get("date")),
		strings.TrimSpace(form.Get("time")))
	value := strings.TrimSpace(form.Get("value"))

	_, err = svc.RecordReading(ctx, id, timestamp, value)
	if err != nil {
		if tracker.IsValidationError(err) {
			SetErrorFlash(s, err.Error())
		} else {
			logger.Error("Failed to record reading", "biomarker_id", id, "error", err)
			SetErrorFlash(s, "Failed to save reading")
		}
		c.Redirect(redirect, http.StatusSeeOther)
		return
	}

	SetSuccessFlash(s, "Reading added successfully")
	c.Redirect(redirect, http.StatusSeeOther)
}

// UpdateReading changes an existing reading's timestamp and value.
func UpdateReading(c flamego.Context, s session.Session, svc *tracker.Service) {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		SetErrorFlash(s, "Invalid reading ID")
		c.Redirect("/", http.StatusSeeOther)
		return
	}

	if err := c.Request().ParseForm(); err != nil {
		logger.Error("Failed to parse form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect("/", http.StatusSeeOther)
		return
	}

	form := c.Request().Form
	redirect := biomarkerRedirect(form.Get("biomarker_id"))
	timestamp := composeTimestamp(
		strings.TrimSpace(form.Get("date")),
		strings.TrimSpace(form.Get("time")))
	value := strings.TrimSpace(form.Get("value"))

	err = svc.UpdateReading(ctx, id, timestamp, value)
	if err != nil {
		if tracker.IsValidationError(err) {
			SetErrorFlash(s, err.Error())
		} else {
			logger.Error("Failed to update reading", "reading_id", id, "error", err)
			SetErrorFlash(s, "Failed to update reading")
		}
		c.Redirect(redirect, http.StatusSeeOther)
		return
	}

	SetSuccessFlash(s, "Reading updated successfully")
	c.Redirect(redirect, http.StatusSeeOther)
}

// DeleteReading removes a single reading.
func DeleteReading(c flamego.Context, s session.Session, svc *tracker.Service) {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		SetErrorFlash(s, "Invalid reading ID")
		c.Redirect("/", http.StatusSeeOther)
		return
	}

	if err := c.Request().ParseForm(); err != nil {
		logger.Error("Failed to parse form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect("/", http.StatusSeeOther)
		return
	}

	redirect := biomarkerRedirect(c.Request().Form.Get("biomarker_id"))

	err = svc.DeleteReading(ctx, id)
	if err != nil {
		if tracker.IsValidationError(err) {
			SetErrorFlash(s, err.Error())
		} else {
			logger.Error("Failed to delete reading", "reading_id", id, "error", err)
			SetErrorFlash(s, "Failed to delete reading")
		}
		c.Redirect(redirect, http.StatusSeeOther)
		return
	}

	SetSuccessFlash(s, "Reading deleted")
	c.Redirect(redirect, http.StatusSeeOther)
}

// biomarkerRedirect builds the detail page path from a form-supplied
// biomarker ID, falling back to the dashboard when it is unusable.
func biomarkerRedirect(raw string) string {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return "/"
	}
	return "/biomarkers/" + strconv.FormatInt(id, 10)
}
