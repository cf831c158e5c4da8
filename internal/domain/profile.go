package domain

import (
	"errors"
	"fmt"
)

// Bins describes evenly spaced choropleth bin endpoints.
type Bins struct {
	Min   float64
	Max   float64
	Count int
}

// Profile fixes the dates and sizes the derived tables are computed for.
type Profile struct {
	AsOf           string
	Windows        []GrowthSpec
	RankingDates   []string
	TopN           int
	MapDateChoices int
	MapBins        Bins
	DefaultStates  []string
}

// DefaultProfile matches the October 2021 ZHVI release.
func DefaultProfile() Profile {
	const asOf = "2021-10-31"
	return Profile{
		AsOf: asOf,
		Windows: []GrowthSpec{
			{Window: WindowYTD, Numerator: asOf, Denominator: "2020-12-31", Months: 10},
			{Window: WindowThreeYear, Numerator: asOf, Denominator: "2018-10-31", Months: 36},
			{Window: WindowTenYear, Numerator: asOf, Denominator: "2011-10-31", Months: 120},
		},
		RankingDates:   []string{asOf, "2018-10-31", "2011-10-31"},
		TopN:           100,
		MapDateChoices: 2,
		MapBins:        Bins{Min: 0, Max: 500000, Count: 11},
		DefaultStates:  []string{"AK"},
	}
}

// Validate checks internal consistency; it does not look at any table.
func (p Profile) Validate() error {
	if p.AsOf == "" {
		return errors.New("profile: as_of is required")
	}
	if len(p.Windows) == 0 {
		return errors.New("profile: at least one growth window is required")
	}
	for _, w := range p.Windows {
		if w.Months <= 0 {
			return fmt.Errorf("profile: window %s: months must be positive", w.Window)
		}
		if w.Numerator == "" || w.Denominator == "" {
			return fmt.Errorf("profile: window %s: numerator and denominator are required", w.Window)
		}
	}
	if p.TopN <= 0 {
		return errors.New("profile: top_n must be positive")
	}
	if p.MapDateChoices <= 0 {
		return errors.New("profile: map_date_choices must be positive")
	}
	if p.MapBins.Count < 2 || p.MapBins.Max <= p.MapBins.Min {
		return errors.New("profile: map_bins needs count >= 2 and max > min")
	}
	return nil
}
