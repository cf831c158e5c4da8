package domain

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Snapshot is the immutable set of tables the dashboard reads from. It is
// built once at startup and shared by reference; nothing writes to it
// afterwards.
type Snapshot struct {
	Profile  Profile
	Dates    []string
	States   []string // distinct, sorted
	MapDates []string // newest first, at most Profile.MapDateChoices

	Records      []RawRecord
	Growth       []GrowthRecord
	Series       []TimeSeriesPoint
	GrowthSeries []GrowthPoint
	Rankings     []Ranking
	Geo          []GeoPoint

	BuiltAt time.Time
}

// BuildSnapshot derives every dashboard table from t.
func BuildSnapshot(t Table, p Profile) (*Snapshot, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, ok := t.DateIndex(p.AsOf); !ok {
		return nil, fmt.Errorf("as-of %s: %w", p.AsOf, ErrUnknownDate)
	}

	growth, err := ComputeGrowth(t, p.Windows)
	if err != nil {
		return nil, err
	}

	rankings := make([]Ranking, 0, len(p.RankingDates))
	for _, date := range p.RankingDates {
		r, err := RankTopStates(t, date, p.TopN)
		if err != nil {
			return nil, err
		}
		rankings = append(rankings, r)
	}

	geo, err := GeoPoints(t)
	if err != nil {
		return nil, fmt.Errorf("build geo points: %w", err)
	}

	return &Snapshot{
		Profile:      p,
		Dates:        slices.Clone(t.Dates),
		States:       distinctStates(t),
		MapDates:     latestDates(t.Dates, p.MapDateChoices),
		Records:      t.Records,
		Growth:       growth,
		Series:       Melt(t),
		GrowthSeries: MeltGrowth(growth),
		Rankings:     rankings,
		Geo:          geo,
		BuiltAt:      clock.Now(),
	}, nil
}

// Ranking returns the ranking computed for date.
func (s *Snapshot) Ranking(date string) (Ranking, bool) {
	for _, r := range s.Rankings {
		if r.Date == date {
			return r, true
		}
	}
	return Ranking{}, false
}

// UndefinedGrowth counts NaN growth records per window.
func (s *Snapshot) UndefinedGrowth() map[GrowthWindow]int {
	out := make(map[GrowthWindow]int, len(s.Profile.Windows))
	for _, w := range s.Profile.Windows {
		out[w.Window] = 0
	}
	for _, g := range s.Growth {
		if math.IsNaN(g.Percent) {
			out[g.Window]++
		}
	}
	return out
}

func distinctStates(t Table) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, rec := range t.Records {
		if _, ok := seen[rec.State]; ok {
			continue
		}
		seen[rec.State] = struct{}{}
		out = append(out, rec.State)
	}
	slices.Sort(out)
	return out
}

// latestDates returns up to n dates, newest first. Dates are ISO formatted, so
// string order is chronological.
func latestDates(dates []string, n int) []string {
	out := slices.Clone(dates)
	slices.Sort(out)
	slices.Reverse(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}
