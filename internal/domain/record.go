package domain

import (
	"encoding/json"
	"math"
)

// RawRecord is one county row of the wide input table.
type RawRecord struct {
	RegionID      int
	Name          string
	County        string // display label, "<Name> (<State>)"
	State         string
	Metro         string
	StateFIPS     int
	MunicipalFIPS int
	Values        []float64 // aligned with Table.Dates; NaN when missing
}

// Table is the wide input: shared ascending date columns and one record per county.
type Table struct {
	Dates   []string
	Records []RawRecord
}

// DateIndex returns the column index of date.
func (t Table) DateIndex(date string) (int, bool) {
	for i, d := range t.Dates {
		if d == date {
			return i, true
		}
	}
	return 0, false
}

// CountyLabel builds the chart label for a county.
func CountyLabel(name, state string) string {
	return name + " (" + state + ")"
}

// TimeSeriesPoint is one (county, date, value) observation in long form. It
// carries the full county identity so Widen can rebuild the wide table.
type TimeSeriesPoint struct {
	RegionID      int
	Name          string
	County        string
	State         string
	Metro         string
	StateFIPS     int
	MunicipalFIPS int
	Date          string
	Value         float64
}

// GrowthRecord is the annualized growth of one county over one window.
type GrowthRecord struct {
	RegionID int
	County   string
	State    string
	Window   GrowthWindow
	Percent  float64 // NaN when undefined
}

// GrowthPoint is a GrowthRecord flattened for the grouped bar chart.
type GrowthPoint struct {
	County  string
	State   string
	Type    string // window label
	Percent float64
}

// RankingCount is the number of top-N counties located in a state.
type RankingCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

// Ranking holds the per-state counts for one snapshot date.
type Ranking struct {
	Date   string         `json:"date"`
	Counts []RankingCount `json:"counts"`
}

// Total sums the counts.
func (r Ranking) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c.Count
	}
	return n
}

// GeoPoint is one observation keyed by the 5-digit county FIPS code.
type GeoPoint struct {
	FIPS  string
	Date  string
	Value float64
}

// nullable maps NaN to nil so encoding/json writes null instead of failing.
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (p TimeSeriesPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RegionID int      `json:"region_id"`
		County   string   `json:"county"`
		State    string   `json:"state"`
		Metro    string   `json:"metro,omitempty"`
		Date     string   `json:"date"`
		Value    *float64 `json:"home_value"`
	}{p.RegionID, p.County, p.State, p.Metro, p.Date, nullable(p.Value)})
}

func (p GrowthPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		County  string   `json:"county"`
		State   string   `json:"state"`
		Type    string   `json:"type"`
		Percent *float64 `json:"annualized_growth_pct"`
	}{p.County, p.State, p.Type, nullable(p.Percent)})
}

func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FIPS  string   `json:"fips"`
		Date  string   `json:"date"`
		Value *float64 `json:"home_value"`
	}{p.FIPS, p.Date, nullable(p.Value)})
}
