// Package charts builds echarts option objects for the admin and creator dashboards.
package charts

import (
	"fmt"

	"skillup-go/internal/analytics"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Chart is satisfied by every go-echarts chart type.
type Chart interface {
	Validate()
	JSON() map[string]interface{}
}

// Options returns the chart's option object, ready to be embedded in a JSON response.
func Options(c Chart) map[string]interface{} {
	c.Validate()
	return c.JSON()
}

// RevenueTrend plots monthly revenue with enrollments on a second series.
func RevenueTrend(months []analytics.MonthlyAmount) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Revenue",
			Subtitle: "Last 12 months",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(months))
	revenue := make([]opts.LineData, 0, len(months))
	enrollments := make([]opts.LineData, 0, len(months))
	for _, m := range months {
		labels = append(labels, m.Month)
		revenue = append(revenue, opts.LineData{Value: m.Revenue})
		enrollments = append(enrollments, opts.LineData{Value: m.Enrollments})
	}

	line.SetXAxis(labels).
		AddSeries("Revenue", revenue).
		AddSeries("Enrollments", enrollments).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

// EnrollmentTimeline plots daily enrollments on a time axis.
func EnrollmentTimeline(days []analytics.DailyCount) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Enrollments"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	items := make([]opts.LineData, 0, len(days))
	for _, d := range days {
		items = append(items, opts.LineData{Value: []interface{}{d.Date, d.Count}})
	}
	line.AddSeries("Enrollments", items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

// RatingBars plots the star rating distribution.
func RatingBars(buckets []analytics.RatingBucket) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Ratings"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(buckets))
	items := make([]opts.BarData, 0, len(buckets))
	for _, b := range buckets {
		labels = append(labels, starLabel(b.Stars))
		items = append(items, opts.BarData{Value: b.Count})
	}
	bar.SetXAxis(labels).AddSeries("Attempts", items)
	return bar
}

func starLabel(stars int) string {
	if stars == 1 {
		return "1 star"
	}
	return fmt.Sprintf("%d stars", stars)
}
