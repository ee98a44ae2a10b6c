/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"bytes"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/tamsinw/baseline/db"
)

// renderTrendChart creates a line chart of readings for one biomarker,
// with the reference range drawn as dashed mark lines.
func renderTrendChart(biomarker db.Biomarker, readings []db.Reading, refRange *db.ReferenceRange) (string, error) {
	if len(readings) < 2 {
		return "", nil
	}

	xAxis := make([]string, 0, len(readings))
	yData := make([]opts.LineData, 0, len(readings))

	var dataMin, dataMax float64
	for i, reading := range readings {
		xAxis = append(xAxis, chartDateLabel(reading.Timestamp))
		yData = append(yData, opts.LineData{Value: reading.Value})

		if i == 0 {
			dataMin = reading.Value
			dataMax = reading.Value

			continue
		}
		if reading.Value < dataMin {
			dataMin = reading.Value
		}
		if reading.Value > dataMax {
			dataMax = reading.Value
		}
	}

	// Scale the y-axis so the reference range is visible even when all
	// readings sit inside or outside it.
	var yAxisMin, yAxisMax interface{}
	if refRange != nil {
		lower, upper := refRange.LowerBound, refRange.UpperBound
		if lower != nil && upper != nil {
			padding := (*upper - *lower) * 0.1
			minVal := *lower - padding
			maxVal := *upper + padding

			if dataMin < minVal {
				minVal = dataMin - (dataMax-dataMin)*0.05
			}
			if dataMax > maxVal {
				maxVal = dataMax + (dataMax-dataMin)*0.05
			}

			yAxisMin = minVal
			yAxisMax = maxVal
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: biomarker.Name,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: biomarker.Unit,
			Min:  yAxisMin,
			Max:  yAxisMax,
		}),
	)

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(true),
		}),
		charts.WithMarkPointNameTypeItemOpts(
			opts.MarkPointNameTypeItem{Name: "Max", Type: "max"},
			opts.MarkPointNameTypeItem{Name: "Min", Type: "min"},
		),
	}

	if markLines := rangeMarkLines(refRange); len(markLines) > 0 {
		seriesOpts = append(seriesOpts, func(s *charts.SingleSeries) {
			s.MarkLines = &opts.MarkLines{
				Data: markLines,
				MarkLineStyle: opts.MarkLineStyle{
					Symbol: []string{"none", "none"},
					LineStyle: &opts.LineStyle{
						Color: "rgba(128, 128, 128, 0.6)",
						Type:  "dashed",
						Width: 1.5,
					},
				},
			}
		})
	}

	line.SetXAxis(xAxis).
		AddSeries(biomarker.Name, yData).
		SetSeriesOptions(seriesOpts...)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// rangeMarkLines returns the horizontal bound lines for a reference
// range, one per bound the range type carries.
func rangeMarkLines(refRange *db.ReferenceRange) []interface{} {
	if refRange == nil {
		return nil
	}

	var items []interface{}
	if refRange.LowerBound != nil && refRange.Type != db.RangeBelow {
		items = append(items, opts.MarkLineNameYAxisItem{
			Name:  "Range Min",
			YAxis: *refRange.LowerBound,
		})
	}
	if refRange.UpperBound != nil && refRange.Type != db.RangeAbove {
		items = append(items, opts.MarkLineNameYAxisItem{
			Name:  "Range Max",
			YAxis: *refRange.UpperBound,
		})
	}

	return items
}

func chartDateLabel(timestamp string) string {
	parsed, err := time.ParseInLocation(db.TimestampLayout, timestamp, time.Local)
	if err != nil {
		return timestamp
	}

	return parsed.Format("Jan 2, 2006")
}
