/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	htmltemplate "html/template"
	"net/http"

	"github.com/flamego/flamego"
	"github.com/flamego/template"

	"github.com/tamsinw/baseline/db"
	"github.com/tamsinw/baseline/tracker"
)

// biomarkerCard is one dashboard tile: the biomarker, its latest reading
// and a rendered trend chart for the selected time range.
type biomarkerCard struct {
	Biomarker  db.Biomarker
	Latest     *db.Reading
	LatestText string
	LatestAge  string
	RangeLabel string
	InRange    *bool
	Chart      htmltemplate.HTML
}

// categoryGroup holds the cards of one biomarker category, in catalogue
// order.
type categoryGroup struct {
	Category string
	Cards    []biomarkerCard
}

// Dashboard displays every biomarker as a card, grouped by category.
func Dashboard(c flamego.Context, t template.Template, data template.Data, svc *tracker.Service) {
	data["IsDashboard"] = true
	ctx := c.Request().Context()
	timeRange := selectedTimeRange(c)

	summaries, err := svc.Summaries(ctx)
	if err != nil {
		logger.Error("Failed to load biomarker summaries", "error", err)
		data["Error"] = "Failed to load biomarkers"
		t.HTML(http.StatusOK, "dashboard")
		return
	}

	var groups []categoryGroup
	readingCount := 0
	for _, summary := range summaries {
		card := biomarkerCard{
			Biomarker:  summary.Biomarker,
			Latest:     summary.Latest,
			RangeLabel: tracker.RangeLabel(summary.Range),
			InRange:    summary.InRange,
		}
		if summary.Latest != nil {
			card.LatestText = formatValue(summary.Latest.Value) + " " + summary.Biomarker.Unit
			card.LatestAge = formatReadingAge(summary.Latest.Timestamp)
			readingCount++
		}

		readings, err := svc.ReadingsInRange(ctx, summary.Biomarker.ID, timeRange)
		if err != nil {
			logger.Error("Failed to load readings for chart",
				"biomarker_id", summary.Biomarker.ID,
				"error", err)
		} else {
			chart, err := renderTrendChart(summary.Biomarker, readings, summary.Range)
			if err != nil {
				logger.Error("Failed to render trend chart",
					"biomarker_id", summary.Biomarker.ID,
					"error", err)
			} else if chart != "" {
				card.Chart = htmltemplate.HTML(chart)
			}
		}

		category := summary.Biomarker.CategoryOrDefault()
		if len(groups) == 0 || groups[len(groups)-1].Category != category {
			groups = append(groups, categoryGroup{Category: category})
		}
		groups[len(groups)-1].Cards = append(groups[len(groups)-1].Cards, card)
	}

	data["Groups"] = groups
	data["TotalBiomarkers"] = len(summaries)
	data["TrackedBiomarkers"] = readingCount
	data["TimeRange"] = timeRange
	data["TimeRangeOptions"] = timeRangeOptions
	t.HTML(http.StatusOK, "dashboard")
}
