// Package chart renders training curves as standalone HTML pages.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn"
)

// Series is one curve: the rate of each block of Every episodes.
type Series struct {
	Name  string
	Every int
	Rates []float64
}

// NonLossSeries returns the non-loss rate of results every m episodes.
func NonLossSeries(name string, results *qlearn.Results, m int) Series {
	return Series{Name: name, Every: m, Rates: results.NonLossRateEvery(m)}
}

// IllegalSeries returns the illegal move rate of results every m episodes.
func IllegalSeries(name string, results *qlearn.Results, m int) Series {
	rates := make([]float64, 0, results.Episodes()/max(m, 1))
	for end := m; m > 0 && end <= results.Episodes(); end += m {
		block := &qlearn.Results{Outcomes: results.Outcomes[end-m : end]}
		rates = append(rates, block.IllegalRate(0))
	}

	return Series{Name: name, Every: m, Rates: rates}
}

// Render writes an HTML page with one line chart holding all series.
// The x axis is the episode count at the end of each block.
func Render(w io.Writer, title string, series ...Series) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "rate",
			Min:  0,
			Max:  1,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "episode",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	numPoints := 0
	every := 1
	for _, s := range series {
		if len(s.Rates) > numPoints {
			numPoints = len(s.Rates)
			every = s.Every
		}
	}

	var steps []string
	for i := 0; i < numPoints; i++ {
		steps = append(steps, fmt.Sprintf("%d", (i+1)*every))
	}

	line = line.SetXAxis(steps)
	for _, s := range series {
		items := make([]opts.LineData, 0, len(s.Rates))
		for _, r := range s.Rates {
			items = append(items, opts.LineData{Value: r})
		}

		line.AddSeries(s.Name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(w)
}

// WriteFile renders the chart to path, creating parent directories.
func WriteFile(path, title string, series ...Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create chart dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Render(f, title, series...); err != nil {
		f.Close()
		return errors.Wrapf(err, "render chart %s", path)
	}

	return f.Close()
}
