// Package report renders a static HTML summary of the run ledger: unit
// outcomes per stage and rejection tallies per error kind.
package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/aricept094/casiapipe/internal/db"
)

// Build renders the batch report to outPath.
func Build(stages []db.StageCount, rejections []db.KindCount, outPath string) error {
	page := components.NewPage()
	page.PageTitle = "casiapipe batch report"
	page.AddCharts(stageChart(stages), rejectionChart(rejections))

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// stageChart shows processed vs failed units per pipeline stage.
func stageChart(stages []db.StageCount) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Units per stage",
			Subtitle: "processed vs failed across all recorded runs",
		}),
	)

	names := make([]string, 0, len(stages))
	processed := make([]opts.BarData, 0, len(stages))
	failed := make([]opts.BarData, 0, len(stages))
	for _, s := range stages {
		names = append(names, s.Stage)
		processed = append(processed, opts.BarData{Value: s.Processed})
		failed = append(failed, opts.BarData{Value: s.Failed})
	}

	bar.SetXAxis(names).
		AddSeries("processed", processed).
		AddSeries("failed", failed)
	return bar
}

// rejectionChart shows the rejection tally per error kind.
func rejectionChart(rejections []db.KindCount) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Rejections by kind",
		}),
	)

	kinds := make([]string, 0, len(rejections))
	counts := make([]opts.BarData, 0, len(rejections))
	for _, r := range rejections {
		kinds = append(kinds, r.Kind)
		counts = append(counts, opts.BarData{Value: r.Count})
	}

	bar.SetXAxis(kinds).AddSeries("rejections", counts)
	return bar
}
