package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMelt_RowMajorOrder(t *testing.T) {
	table := Table{
		Dates: []string{"2021-09-30", "2021-10-31"},
		Records: []RawRecord{
			record(10, "Kings County", "NY", 36, 47, 900000, 910000),
			record(20, "Harris County", "TX", 48, 201, 250000, nan),
		},
	}

	points := Melt(table)
	require.Len(t, points, 4)

	type key struct {
		ID   int
		Date string
	}
	got := make([]key, len(points))
	for i, p := range points {
		got[i] = key{p.RegionID, p.Date}
	}
	assert.Equal(t, []key{
		{10, "2021-09-30"}, {10, "2021-10-31"},
		{20, "2021-09-30"}, {20, "2021-10-31"},
	}, got)
	assert.Equal(t, "Kings County (NY)", points[0].County)
	assert.Equal(t, 910000.0, points[1].Value)
	assert.True(t, isNaN(points[3].Value), "missing values are kept")
}

func TestWiden_RoundTrip(t *testing.T) {
	table := profileTable(
		record(1, "Los Angeles County", "CA", 6, 37, 400000, 600000, 750000, 780000, 790000),
		record(2, "Loving County", "TX", 48, 301, nan, nan, 80000, nan, 82000),
		record(3, "Sitka City and Borough", "AK", 2, 220, 250000, 300000, 340000, 350000, 355000),
	)

	wide, err := Widen(Melt(table))
	require.NoError(t, err)

	if diff := cmp.Diff(table, wide, cmpopts.EquateNaNs()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWiden_Empty(t *testing.T) {
	wide, err := Widen(nil)
	require.NoError(t, err)
	assert.Empty(t, wide.Records)
}

func TestWiden_Duplicate(t *testing.T) {
	points := Melt(Table{Dates: []string{"2021-10-31"}, Records: []RawRecord{record(1, "A", "CA", 6, 1, 1)}})
	points = append(points, points[0])

	_, err := Widen(points)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestWiden_MissingDate(t *testing.T) {
	points := []TimeSeriesPoint{
		{RegionID: 1, Date: "2021-09-30", Value: 1},
		{RegionID: 1, Date: "2021-10-31", Value: 2},
		{RegionID: 2, Date: "2021-10-31", Value: 3},
	}

	_, err := Widen(points)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region 2 missing 2021-09-30")
}

func TestMeltGrowth(t *testing.T) {
	records := []GrowthRecord{
		{RegionID: 1, County: "A (CA)", State: "CA", Window: WindowYTD, Percent: 12.5},
		{RegionID: 1, County: "A (CA)", State: "CA", Window: WindowTenYear, Percent: nan},
	}

	points := MeltGrowth(records)
	require.Len(t, points, 2)
	assert.Equal(t, GrowthPoint{County: "A (CA)", State: "CA", Type: "Annualized YTD % Growth", Percent: 12.5}, points[0])
	assert.Equal(t, "Annualized 10yr % Growth", points[1].Type)
	assert.True(t, isNaN(points[1].Percent))
}

func TestPointJSON_NaNIsNull(t *testing.T) {
	data, err := json.Marshal([]any{
		GrowthPoint{County: "A (CA)", State: "CA", Type: "Annualized YTD % Growth", Percent: nan},
		GeoPoint{FIPS: "06001", Date: "2021-10-31", Value: 123456},
		TimeSeriesPoint{RegionID: 7, County: "A (CA)", State: "CA", Date: "2021-10-31", Value: nan},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"county":"A (CA)","state":"CA","type":"Annualized YTD % Growth","annualized_growth_pct":null},
		{"fips":"06001","date":"2021-10-31","home_value":123456},
		{"region_id":7,"county":"A (CA)","state":"CA","date":"2021-10-31","home_value":null}
	]`, string(data))
}

func isNaN(v float64) bool { return v != v }
