// Package dashboard maps UI controls to pure chart-data functions over an
// immutable domain.Snapshot. It owns no UI state: callers pass the current
// selection of a control and get back the rows and series metadata for the
// chart bound to it.
package dashboard

import (
	"errors"
	"fmt"
	"slices"

	"github.com/couchcryptid/county-home-values/internal/domain"
)

// ControlID identifies an input control on the dashboard.
type ControlID string

const (
	ControlTimeSeries ControlID = "dropdown_ts"
	ControlGrowth     ControlID = "dropdown_growth"
	ControlMap        ControlID = "dropdown_map"
)

var (
	ErrUnknownControl   = errors.New("unknown control")
	ErrInvalidSelection = errors.New("invalid selection")
)

// Selection is the current value of a control: state codes for the
// multi-select dropdowns, a single date for the map.
type Selection []string

// ViewFunc recomputes a chart's data for a selection. Implementations only
// read the snapshot, so calling one twice with the same selection returns the
// same result.
type ViewFunc func(Selection) (ChartData, error)

// Control describes an input control and the chart it drives.
type Control struct {
	ID      ControlID `json:"id"`
	Chart   string    `json:"chart"`
	Title   string    `json:"title"`
	Label   string    `json:"label"`
	Multi   bool      `json:"multi"`
	Options []string  `json:"options"`
	Default []string  `json:"default"`
}

// Overview is everything a client needs to lay out the dashboard.
type Overview struct {
	AsOf          string    `json:"as_of"`
	Controls      []Control `json:"controls"`
	RankingsTitle string    `json:"rankings_title"`
	RankingDates  []string  `json:"ranking_dates"`
}

// Registry binds each control to its view function.
type Registry struct {
	snap     *domain.Snapshot
	views    map[ControlID]ViewFunc
	controls []Control
}

// NewRegistry builds the control registry over snap. snap must not be
// modified afterwards.
func NewRegistry(snap *domain.Snapshot) *Registry {
	p := snap.Profile
	return &Registry{
		snap: snap,
		views: map[ControlID]ViewFunc{
			ControlTimeSeries: timeSeriesView(snap),
			ControlGrowth:     growthView(snap),
			ControlMap:        mapView(snap),
		},
		controls: []Control{
			{
				ID:      ControlTimeSeries,
				Chart:   "ts",
				Title:   timeSeriesTitle(snap.Dates),
				Label:   "Choose State",
				Multi:   true,
				Options: snap.States,
				Default: p.DefaultStates,
			},
			{
				ID:      ControlGrowth,
				Chart:   "growth",
				Title:   "County Home Value Annualized % Growth",
				Label:   "Choose State",
				Multi:   true,
				Options: snap.States,
				Default: p.DefaultStates,
			},
			{
				ID:      ControlMap,
				Chart:   "map",
				Title:   "County Home Values",
				Label:   "Choose Date",
				Multi:   false,
				Options: snap.MapDates,
				Default: []string{p.AsOf},
			},
		},
	}
}

// Render recomputes the chart bound to id for sel.
func (r *Registry) Render(id ControlID, sel Selection) (ChartData, error) {
	view, ok := r.views[id]
	if !ok {
		return ChartData{}, fmt.Errorf("%w: %q", ErrUnknownControl, id)
	}
	return view(sel)
}

// Controls lists the dashboard's input controls in layout order. The result
// is a copy and may be modified by the caller.
func (r *Registry) Controls() []Control {
	out := make([]Control, len(r.controls))
	for i, c := range r.controls {
		c.Options = slices.Clone(c.Options)
		c.Default = slices.Clone(c.Default)
		out[i] = c
	}
	return out
}

// Overview describes the dashboard layout.
func (r *Registry) Overview() Overview {
	dates := make([]string, len(r.snap.Rankings))
	for i, rk := range r.snap.Rankings {
		dates[i] = rk.Date
	}
	return Overview{
		AsOf:          r.snap.Profile.AsOf,
		Controls:      r.Controls(),
		RankingsTitle: fmt.Sprintf("States with The Most Expensive %d Counties", r.snap.Profile.TopN),
		RankingDates:  dates,
	}
}

// Snapshot returns the snapshot the registry reads from.
func (r *Registry) Snapshot() *domain.Snapshot {
	return r.snap
}

func timeSeriesTitle(dates []string) string {
	if len(dates) == 0 {
		return "County Home Values"
	}
	return fmt.Sprintf("County Home Values from %.4s to %.4s", dates[0], dates[len(dates)-1])
}
