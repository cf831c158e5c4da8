// Package render draws dashboard charts as PNG images: ranking pies with
// go-chart and county time series with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/couchcryptid/county-home-values/internal/domain"
	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no data to render")

const (
	pieSize = 512

	lineWidth  = 12 * vg.Inch
	lineHeight = 6 * vg.Inch
)

// RankingPie draws one pie slice per state, titled by the ranking date.
func RankingPie(w io.Writer, r domain.Ranking) error {
	values := make([]chart.Value, 0, len(r.Counts))
	for _, c := range r.Counts {
		if c.Count > 0 {
			values = append(values, chart.Value{Value: float64(c.Count), Label: c.State})
		}
	}
	if len(values) == 0 {
		return fmt.Errorf("ranking %s: %w", r.Date, ErrNoData)
	}

	pie := chart.PieChart{
		Title:  r.Date,
		Width:  pieSize,
		Height: pieSize,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render ranking %s: %w", r.Date, err)
	}
	return nil
}

// TimeSeries draws one line per county. Undefined values leave gaps at the
// ends of a line; counties with no defined value are left out.
func TimeSeries(w io.Writer, title string, points []domain.TimeSeriesPoint) error {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Home Value"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	p.Add(plotter.NewGrid())

	series, order, err := countySeries(points)
	if err != nil {
		return err
	}
	for i, county := range order {
		xys := series[county]
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("line for %s: %w", county, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(county, line)
	}
	p.Legend.Top = true

	wt, err := p.WriterTo(lineWidth, lineHeight, "png")
	if err != nil {
		return fmt.Errorf("render time series: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// countySeries groups points by county in first-appearance order and maps
// dates to Unix seconds.
func countySeries(points []domain.TimeSeriesPoint) (map[string]plotter.XYs, []string, error) {
	series := map[string]plotter.XYs{}
	var order []string
	for _, pt := range points {
		if _, ok := series[pt.County]; !ok {
			order = append(order, pt.County)
			series[pt.County] = nil
		}
		if math.IsNaN(pt.Value) {
			continue
		}
		d, err := time.Parse(time.DateOnly, pt.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("point date %q: %w", pt.Date, err)
		}
		series[pt.County] = append(series[pt.County], plotter.XY{X: float64(d.Unix()), Y: pt.Value})
	}
	return series, order, nil
}
