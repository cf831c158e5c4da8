package domain

import (
	"fmt"
	"math"
)

// Melt flattens the wide table into one point per (county, date), record by
// record and then in column order. Missing values are kept as NaN.
func Melt(t Table) []TimeSeriesPoint {
	out := make([]TimeSeriesPoint, 0, len(t.Records)*len(t.Dates))
	for _, rec := range t.Records {
		for i, date := range t.Dates {
			out = append(out, TimeSeriesPoint{
				RegionID:      rec.RegionID,
				Name:          rec.Name,
				County:        rec.County,
				State:         rec.State,
				Metro:         rec.Metro,
				StateFIPS:     rec.StateFIPS,
				MunicipalFIPS: rec.MunicipalFIPS,
				Date:          date,
				Value:         valueAt(rec, i),
			})
		}
	}
	return out
}

// MeltGrowth flattens growth records into chart points labelled by window.
func MeltGrowth(records []GrowthRecord) []GrowthPoint {
	out := make([]GrowthPoint, len(records))
	for i, r := range records {
		out[i] = GrowthPoint{
			County:  r.County,
			State:   r.State,
			Type:    r.Window.Label(),
			Percent: r.Percent,
		}
	}
	return out
}

// Widen pivots long points back into a wide table. Counties and dates appear
// in order of first occurrence. Every county must have exactly one point per
// date.
func Widen(points []TimeSeriesPoint) (Table, error) {
	var t Table
	dateIdx := map[string]int{}
	for _, p := range points {
		if _, ok := dateIdx[p.Date]; !ok {
			dateIdx[p.Date] = len(t.Dates)
			t.Dates = append(t.Dates, p.Date)
		}
	}

	recIdx := map[int]int{}
	seen := map[int][]bool{}
	for _, p := range points {
		ri, ok := recIdx[p.RegionID]
		if !ok {
			ri = len(t.Records)
			recIdx[p.RegionID] = ri
			values := make([]float64, len(t.Dates))
			for i := range values {
				values[i] = math.NaN()
			}
			t.Records = append(t.Records, RawRecord{
				RegionID:      p.RegionID,
				Name:          p.Name,
				County:        p.County,
				State:         p.State,
				Metro:         p.Metro,
				StateFIPS:     p.StateFIPS,
				MunicipalFIPS: p.MunicipalFIPS,
				Values:        values,
			})
			seen[p.RegionID] = make([]bool, len(t.Dates))
		}
		di := dateIdx[p.Date]
		if seen[p.RegionID][di] {
			return Table{}, fmt.Errorf("widen: duplicate point for region %d on %s", p.RegionID, p.Date)
		}
		seen[p.RegionID][di] = true
		t.Records[ri].Values[di] = p.Value
	}

	for _, rec := range t.Records {
		for di, ok := range seen[rec.RegionID] {
			if !ok {
				return Table{}, fmt.Errorf("widen: region %d missing %s", rec.RegionID, t.Dates[di])
			}
		}
	}
	return t, nil
}
