package dashboard_test

import (
	"encoding/json"
	"math"
	"slices"
	"testing"

	"github.com/couchcryptid/county-home-values/internal/dashboard"
	"github.com/couchcryptid/county-home-values/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func county(id int, name, state string, stateFIPS, countyFIPS int, values ...float64) domain.RawRecord {
	return domain.RawRecord{
		RegionID:      id,
		Name:          name,
		County:        domain.CountyLabel(name, state),
		State:         state,
		StateFIPS:     stateFIPS,
		MunicipalFIPS: countyFIPS,
		Values:        values,
	}
}

// newRegistry builds a registry over four counties in three states with
// every date the default profile needs.
func newRegistry(t *testing.T) *dashboard.Registry {
	t.Helper()
	table := domain.Table{
		Dates: []string{"2011-10-31", "2018-10-31", "2020-12-31", "2021-09-30", "2021-10-31"},
		Records: []domain.RawRecord{
			county(1, "Anchorage", "AK", 2, 20, 280000, 300000, 320000, 330000, 335000),
			county(2, "Juneau", "AK", 2, 110, 300000, 310000, 0, 350000, 355000),
			county(3, "Santa Clara County", "CA", 6, 85, 600000, 1100000, 1250000, 1300000, 1320000),
			county(4, "Travis County", "TX", 48, 453, 220000, 330000, 400000, 480000, 490000),
		},
	}
	snap, err := domain.BuildSnapshot(table, domain.DefaultProfile())
	require.NoError(t, err)
	return dashboard.NewRegistry(snap)
}

func TestRender_TimeSeriesFiltersByState(t *testing.T) {
	reg := newRegistry(t)

	data, err := reg.Render(dashboard.ControlTimeSeries, dashboard.Selection{"AK"})
	require.NoError(t, err)

	assert.Equal(t, "line", data.Kind)
	assert.Equal(t, "Date", data.X)
	assert.Equal(t, "Home Value", data.Y)
	assert.Equal(t, "County", data.ColorBy)
	assert.Equal(t, []string{"Anchorage (AK)", "Juneau (AK)"}, data.Series)

	rows, ok := data.Rows.([]domain.TimeSeriesPoint)
	require.True(t, ok)
	assert.Len(t, rows, 10)
	for _, p := range rows {
		assert.Equal(t, "AK", p.State)
	}
	assert.Equal(t, 10, data.Len())
}

func TestRender_TimeSeriesMultiSelect(t *testing.T) {
	reg := newRegistry(t)

	data, err := reg.Render(dashboard.ControlTimeSeries, dashboard.Selection{"TX", "CA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Santa Clara County (CA)", "Travis County (TX)"}, data.Series)
	assert.Equal(t, 10, data.Len())
}

func TestRender_GrowthKeepsUndefinedRows(t *testing.T) {
	reg := newRegistry(t)

	data, err := reg.Render(dashboard.ControlGrowth, dashboard.Selection{"AK"})
	require.NoError(t, err)

	assert.Equal(t, "bar", data.Kind)
	assert.Equal(t, "group", data.BarMode)
	assert.Equal(t, "Type", data.ColorBy)
	assert.Equal(t, []string{"Annualized YTD % Growth", "Annualized 3yr % Growth", "Annualized 10yr % Growth"}, data.Series)

	rows := data.Rows.([]domain.GrowthPoint)
	require.Len(t, rows, 6)
	undefined := 0
	for _, p := range rows {
		if math.IsNaN(p.Percent) {
			undefined++
			assert.Equal(t, "Juneau (AK)", p.County)
			assert.Equal(t, "Annualized YTD % Growth", p.Type)
		}
	}
	assert.Equal(t, 1, undefined)

	require.Len(t, data.Summary, 3)
	assert.Equal(t, "Annualized YTD % Growth", data.Summary[0].Type)
	assert.Equal(t, 1, data.Summary[0].Count, "undefined values are not summarized")
	assert.Equal(t, 2, data.Summary[1].Count)
}

func TestRender_GrowthCategoriesTotalDescending(t *testing.T) {
	reg := newRegistry(t)

	data, err := reg.Render(dashboard.ControlGrowth, dashboard.Selection{"AK", "CA", "TX"})
	require.NoError(t, err)

	totals := map[string]float64{}
	for _, p := range data.Rows.([]domain.GrowthPoint) {
		if !math.IsNaN(p.Percent) {
			totals[p.County] += p.Percent
		}
	}
	require.Len(t, data.Categories, 4)
	for i := 1; i < len(data.Categories); i++ {
		assert.GreaterOrEqual(t, totals[data.Categories[i-1]], totals[data.Categories[i]])
	}
}

func TestRender_GrowthSummaryStatistics(t *testing.T) {
	reg := newRegistry(t)

	data, err := reg.Render(dashboard.ControlGrowth, dashboard.Selection{"AK", "CA", "TX"})
	require.NoError(t, err)

	var tenYear []float64
	for _, p := range data.Rows.([]domain.GrowthPoint) {
		if p.Type == "Annualized 10yr % Growth" {
			tenYear = append(tenYear, p.Percent)
		}
	}
	require.Len(t, tenYear, 4)

	sum := 0.0
	for _, v := range tenYear {
		sum += v
	}
	s := data.Summary[2]
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, sum/4, s.Mean, 1e-9)
	slices.Sort(tenYear)
	assert.InDelta(t, (tenYear[1]+tenYear[2])/2, s.Median, 1e-9)
}

func TestRender_MapFiltersByDate(t *testing.T) {
	reg := newRegistry(t)

	data, err := reg.Render(dashboard.ControlMap, dashboard.Selection{"2021-10-31"})
	require.NoError(t, err)

	assert.Equal(t, "choropleth", data.Kind)
	assert.Equal(t, []float64{0, 50000, 100000, 150000, 200000, 250000, 300000, 350000, 400000, 450000, 500000}, data.Binning)

	rows := data.Rows.([]domain.GeoPoint)
	require.Len(t, rows, 4)
	assert.Equal(t, domain.GeoPoint{FIPS: "02020", Date: "2021-10-31", Value: 335000}, rows[0])
	assert.Equal(t, "48453", rows[3].FIPS)
}

func TestRender_MapRejectsMultipleDates(t *testing.T) {
	reg := newRegistry(t)

	_, err := reg.Render(dashboard.ControlMap, dashboard.Selection{"2021-10-31", "2021-09-30"})
	require.Error(t, err)
	assert.ErrorIs(t, err, dashboard.ErrInvalidSelection)
}

func TestRender_EmptyAndUnknownSelections(t *testing.T) {
	reg := newRegistry(t)

	tests := []struct {
		name    string
		control dashboard.ControlID
		sel     dashboard.Selection
	}{
		{"no states for time series", dashboard.ControlTimeSeries, nil},
		{"no states for growth", dashboard.ControlGrowth, dashboard.Selection{}},
		{"unknown state", dashboard.ControlTimeSeries, dashboard.Selection{"ZZ"}},
		{"no date for map", dashboard.ControlMap, nil},
		{"unknown date", dashboard.ControlMap, dashboard.Selection{"1999-01-31"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := reg.Render(tt.control, tt.sel)
			require.NoError(t, err)
			assert.Equal(t, 0, data.Len())

			body, err := json.Marshal(data)
			require.NoError(t, err)
			assert.Contains(t, string(body), `"rows":[]`)
		})
	}
}

func TestRender_IsPure(t *testing.T) {
	reg := newRegistry(t)

	for _, id := range []dashboard.ControlID{dashboard.ControlTimeSeries, dashboard.ControlGrowth} {
		first, err := reg.Render(id, dashboard.Selection{"AK", "TX"})
		require.NoError(t, err)
		second, err := reg.Render(id, dashboard.Selection{"AK", "TX"})
		require.NoError(t, err)

		if diff := cmp.Diff(first, second, cmpopts.EquateNaNs()); diff != "" {
			t.Fatalf("%s: repeated render differs (-first +second):\n%s", id, diff)
		}
	}
}

func TestRender_UnknownControl(t *testing.T) {
	reg := newRegistry(t)

	_, err := reg.Render("dropdown_nope", dashboard.Selection{"AK"})
	require.Error(t, err)
	assert.ErrorIs(t, err, dashboard.ErrUnknownControl)
}

func TestControlsAndOverview(t *testing.T) {
	reg := newRegistry(t)

	controls := reg.Controls()
	require.Len(t, controls, 3)

	assert.Equal(t, dashboard.ControlTimeSeries, controls[0].ID)
	assert.True(t, controls[0].Multi)
	assert.Equal(t, []string{"AK", "CA", "TX"}, controls[0].Options)
	assert.Equal(t, []string{"AK"}, controls[0].Default)
	assert.Equal(t, "County Home Values from 2011 to 2021", controls[0].Title)

	assert.Equal(t, dashboard.ControlMap, controls[2].ID)
	assert.False(t, controls[2].Multi)
	assert.Equal(t, []string{"2021-10-31", "2021-09-30"}, controls[2].Options)
	assert.Equal(t, []string{"2021-10-31"}, controls[2].Default)

	ov := reg.Overview()
	assert.Equal(t, "2021-10-31", ov.AsOf)
	assert.Equal(t, "States with The Most Expensive 100 Counties", ov.RankingsTitle)
	assert.Equal(t, []string{"2021-10-31", "2018-10-31", "2011-10-31"}, ov.RankingDates)
}

func TestControls_CallerCannotMutateSnapshot(t *testing.T) {
	reg := newRegistry(t)

	controls := reg.Controls()
	controls[0].Options[0] = "ZZ"
	controls[0].Default[0] = "ZZ"
	controls[2].Options[0] = "1999-01-31"

	ov := reg.Overview()
	ov.Controls[1].Options[0] = "ZZ"

	assert.Equal(t, []string{"AK", "CA", "TX"}, reg.Snapshot().States)
	assert.Equal(t, []string{"AK"}, reg.Snapshot().Profile.DefaultStates)
	assert.Equal(t, []string{"2021-10-31", "2021-09-30"}, reg.Snapshot().MapDates)

	again := reg.Controls()
	assert.Equal(t, []string{"AK", "CA", "TX"}, again[0].Options)
	assert.Equal(t, []string{"AK"}, again[0].Default)
	assert.Equal(t, []string{"2021-10-31", "2021-09-30"}, again[2].Options)
}

func TestRankings(t *testing.T) {
	reg := newRegistry(t)

	charts := reg.Rankings()
	require.Len(t, charts, 3)
	for _, c := range charts {
		assert.Equal(t, "pie", c.Kind)
		total := 0
		for _, rc := range c.Rows.([]domain.RankingCount) {
			total += rc.Count
		}
		assert.Equal(t, 4, total, c.Title)
	}

	c, ok := reg.Ranking("2011-10-31")
	require.True(t, ok)
	assert.Equal(t, []domain.RankingCount{{State: "AK", Count: 2}, {State: "CA", Count: 1}, {State: "TX", Count: 1}}, c.Rows)

	_, ok = reg.Ranking("1999-01-31")
	assert.False(t, ok)
}
