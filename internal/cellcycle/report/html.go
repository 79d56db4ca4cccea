package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderHTML writes a chart page with mean phase durations and lineage type
// counts.
func RenderHTML(w io.Writer, s Summary) error {
	x := make([]string, 0, len(s.Phases))
	means := make([]opts.BarData, 0, len(s.Phases))
	counts := make([]opts.BarData, 0, len(s.Phases))
	for _, p := range s.Phases {
		x = append(x, p.Phase)
		means = append(means, opts.BarData{Value: math.Round(p.Mean*100) / 100})
		counts = append(counts, opts.BarData{Value: p.N})
	}

	durations := charts.NewBar()
	durations.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Cell cycle phases", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Mean phase duration", Subtitle: fmt.Sprintf("tracks=%d imprecise exits=%d", s.Tracks, s.ImpreciseExits)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Frames"}),
	)
	durations.SetXAxis(x).
		AddSeries("mean", means, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"})).
		AddSeries("exact n", counts)

	tx := make([]string, 0, len(s.Types))
	ty := make([]opts.BarData, 0, len(s.Types))
	for _, t := range s.Types {
		tx = append(tx, string(t.Type))
		ty = append(ty, opts.BarData{Value: t.Count})
	}
	types := charts.NewBar()
	types.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Lineage types"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	types.SetXAxis(tx).
		AddSeries("tracks", ty, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	page := components.NewPage()
	page.AddCharts(durations, types)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render summary page: %w", err)
	}
	return nil
}
