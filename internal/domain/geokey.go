package domain

import "fmt"

const (
	maxStateCode     = 99
	maxMunicipalCode = 999
)

// BuildGeoKey zero-pads the state code to 2 digits and the county code to 3
// and concatenates them, e.g. (5, 23) -> "05023". Codes that do not fit their
// width are rejected rather than truncated.
func BuildGeoKey(state, municipal int) (string, error) {
	if state < 0 || state > maxStateCode {
		return "", fmt.Errorf("state code %d: %w", state, ErrOversizedCode)
	}
	if municipal < 0 || municipal > maxMunicipalCode {
		return "", fmt.Errorf("municipal code %d: %w", municipal, ErrOversizedCode)
	}
	return fmt.Sprintf("%02d%03d", state, municipal), nil
}

// GeoPoints melts the table into map points keyed by county FIPS code.
func GeoPoints(t Table) ([]GeoPoint, error) {
	out := make([]GeoPoint, 0, len(t.Records)*len(t.Dates))
	for _, rec := range t.Records {
		key, err := BuildGeoKey(rec.StateFIPS, rec.MunicipalFIPS)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", rec.RegionID, err)
		}
		for i, date := range t.Dates {
			out = append(out, GeoPoint{FIPS: key, Date: date, Value: valueAt(rec, i)})
		}
	}
	return out, nil
}
