package dashboard

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/couchcryptid/county-home-values/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChartData is the filtered subset for one chart plus the metadata the
// renderer needs to draw it. Rows holds []domain.TimeSeriesPoint,
// []domain.GrowthPoint, []domain.GeoPoint or []domain.RankingCount depending
// on Kind.
type ChartData struct {
	Chart      string          `json:"chart"`
	Kind       string          `json:"kind"`
	Title      string          `json:"title,omitempty"`
	X          string          `json:"x"`
	Y          string          `json:"y"`
	ColorBy    string          `json:"color_by,omitempty"`
	BarMode    string          `json:"bar_mode,omitempty"`
	Series     []string        `json:"series,omitempty"`
	Categories []string        `json:"categories,omitempty"`
	Binning    []float64       `json:"binning,omitempty"`
	Summary    []WindowSummary `json:"summary,omitempty"`
	Rows       any             `json:"rows"`
}

// WindowSummary aggregates the defined growth values of one window.
type WindowSummary struct {
	Type   string  `json:"type"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Len reports the number of rows.
func (c ChartData) Len() int {
	switch rows := c.Rows.(type) {
	case []domain.TimeSeriesPoint:
		return len(rows)
	case []domain.GrowthPoint:
		return len(rows)
	case []domain.GeoPoint:
		return len(rows)
	case []domain.RankingCount:
		return len(rows)
	default:
		return 0
	}
}

func (s Selection) set() map[string]struct{} {
	m := make(map[string]struct{}, len(s))
	for _, v := range s {
		m[v] = struct{}{}
	}
	return m
}

func timeSeriesView(snap *domain.Snapshot) ViewFunc {
	return func(sel Selection) (ChartData, error) {
		states := sel.set()
		rows := make([]domain.TimeSeriesPoint, 0)
		var series []string
		seen := map[string]struct{}{}
		for _, p := range snap.Series {
			if _, ok := states[p.State]; !ok {
				continue
			}
			rows = append(rows, p)
			if _, ok := seen[p.County]; !ok {
				seen[p.County] = struct{}{}
				series = append(series, p.County)
			}
		}
		return ChartData{
			Chart:   "ts",
			Kind:    "line",
			X:       "Date",
			Y:       "Home Value",
			ColorBy: "County",
			Series:  series,
			Rows:    rows,
		}, nil
	}
}

func growthView(snap *domain.Snapshot) ViewFunc {
	labels := make([]string, len(snap.Profile.Windows))
	for i, w := range snap.Profile.Windows {
		labels[i] = w.Window.Label()
	}

	return func(sel Selection) (ChartData, error) {
		states := sel.set()
		rows := make([]domain.GrowthPoint, 0)
		for _, p := range snap.GrowthSeries {
			if _, ok := states[p.State]; ok {
				rows = append(rows, p)
			}
		}
		return ChartData{
			Chart:      "growth",
			Kind:       "bar",
			X:          "County",
			Y:          "Annualized % Growth",
			ColorBy:    "Type",
			BarMode:    "group",
			Series:     labels,
			Categories: totalDescending(rows),
			Summary:    summarize(rows, labels),
			Rows:       rows,
		}, nil
	}
}

func mapView(snap *domain.Snapshot) ViewFunc {
	bins := snap.Profile.MapBins
	binning := floats.Span(make([]float64, bins.Count), bins.Min, bins.Max)
	for i := range binning {
		binning[i] = math.Trunc(binning[i])
	}

	return func(sel Selection) (ChartData, error) {
		if len(sel) > 1 {
			return ChartData{}, fmt.Errorf("%w: %s takes a single date, got %d", ErrInvalidSelection, ControlMap, len(sel))
		}
		rows := make([]domain.GeoPoint, 0)
		if len(sel) == 1 {
			for _, p := range snap.Geo {
				if p.Date == sel[0] {
					rows = append(rows, p)
				}
			}
		}
		return ChartData{
			Chart:   "map",
			Kind:    "choropleth",
			Title:   "United States County Home Values",
			X:       "FIPS",
			Y:       "Home Value",
			Binning: slices.Clone(binning),
			Rows:    rows,
		}, nil
	}
}

// Rankings returns one pie dataset per ranking date, in profile order.
func (r *Registry) Rankings() []ChartData {
	out := make([]ChartData, len(r.snap.Rankings))
	for i, rk := range r.snap.Rankings {
		out[i] = rankingChart(rk)
	}
	return out
}

// Ranking returns the pie dataset for one ranking date.
func (r *Registry) Ranking(date string) (ChartData, bool) {
	rk, ok := r.snap.Ranking(date)
	if !ok {
		return ChartData{}, false
	}
	return rankingChart(rk), true
}

func rankingChart(rk domain.Ranking) ChartData {
	return ChartData{
		Chart: "ranking",
		Kind:  "pie",
		Title: rk.Date,
		X:     "State",
		Y:     "Count",
		Rows:  slices.Clone(rk.Counts),
	}
}

// totalDescending orders counties by the sum of their defined growth values,
// largest first. Equal totals keep first-appearance order.
func totalDescending(rows []domain.GrowthPoint) []string {
	var order []string
	totals := map[string]float64{}
	for _, p := range rows {
		if _, ok := totals[p.County]; !ok {
			order = append(order, p.County)
			totals[p.County] = 0
		}
		if !math.IsNaN(p.Percent) {
			totals[p.County] += p.Percent
		}
	}
	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(totals[b], totals[a])
	})
	return order
}

// median expects sorted values. Even counts average the two middle values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return stat.Mean(sorted[n/2-1:n/2+1], nil)
}

func summarize(rows []domain.GrowthPoint, labels []string) []WindowSummary {
	values := map[string][]float64{}
	for _, p := range rows {
		if !math.IsNaN(p.Percent) {
			values[p.Type] = append(values[p.Type], p.Percent)
		}
	}

	var out []WindowSummary
	for _, label := range labels {
		v := values[label]
		if len(v) == 0 {
			continue
		}
		slices.Sort(v)
		out = append(out, WindowSummary{
			Type:   label,
			Count:  len(v),
			Mean:   stat.Mean(v, nil),
			Median: median(v),
		})
	}
	return out
}
