package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGeoKey(t *testing.T) {
	tests := []struct {
		state     int
		municipal int
		expected  string
	}{
		{5, 23, "05023"},
		{48, 1, "48001"},
		{6, 37, "06037"},
		{0, 0, "00000"},
		{99, 999, "99999"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			key, err := BuildGeoKey(tt.state, tt.municipal)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, key)
			assert.Len(t, key, 5)
		})
	}
}

func TestBuildGeoKey_Oversized(t *testing.T) {
	tests := []struct {
		name      string
		state     int
		municipal int
	}{
		{"three digit state", 100, 1},
		{"four digit county", 48, 1000},
		{"negative state", -1, 1},
		{"negative county", 6, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := BuildGeoKey(tt.state, tt.municipal)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOversizedCode)
			assert.Empty(t, key)
		})
	}
}

func TestGeoPoints(t *testing.T) {
	table := Table{
		Dates: []string{"2021-09-30", "2021-10-31"},
		Records: []RawRecord{
			record(1, "Autauga County", "AL", 1, 1, 180000, 182000),
			record(2, "Harris County", "TX", 48, 201, nan, 260000),
		},
	}

	points, err := GeoPoints(table)
	require.NoError(t, err)
	assert.Equal(t, []string{"01001", "01001", "48201", "48201"}, []string{points[0].FIPS, points[1].FIPS, points[2].FIPS, points[3].FIPS})
	assert.Equal(t, "2021-10-31", points[3].Date)
	assert.Equal(t, 260000.0, points[3].Value)
	assert.True(t, isNaN(points[2].Value))
}

func TestGeoPoints_OversizedFailsLoudly(t *testing.T) {
	table := Table{
		Dates:   []string{"2021-10-31"},
		Records: []RawRecord{record(42, "Bad", "ZZ", 100, 1, 1)},
	}

	_, err := GeoPoints(table)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOversizedCode)
	assert.Contains(t, err.Error(), "region 42")
}
