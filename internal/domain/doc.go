// Package domain models Zillow Home Value Index (ZHVI) county time series and
// the tables derived from them for the dashboard.
//
// # Data Source
//
// The input is the public ZHVI county file published at
// https://www.zillow.com/research/data/ (single family and condo/co-op, middle
// tier, smoothed and seasonally adjusted). It is a wide table: one row per
// county, a handful of identity columns, then one column per month-end date in
// ascending order.
//
// # ZHVI Data Conventions
//
// Identity columns:
//
//	RegionID           Zillow region identifier (integer)
//	RegionName         county name, e.g. "Los Angeles County"
//	State              two-letter postal code, e.g. "CA"
//	Metro              metro area name, may be empty
//	StateCodeFIPS      1–2 digit state FIPS code, e.g. 6
//	MunicipalCodeFIPS  1–3 digit county FIPS code, e.g. 37
//
// Date columns are labelled "YYYY-MM-DD" and hold a typical home value in US
// dollars. Empty cells mean the county had no estimate for that month and are
// carried as NaN.
//
// County labels shown in charts append the state: "Los Angeles County (CA)".
//
// # Derived Tables
//
// Growth: annualized percent change between two snapshot columns,
//
//	((value[numerator] / value[denominator]) ^ (12 / months) - 1) * 100
//
// over year-to-date (10 months), 3-year (36) and 10-year (120) windows that
// share one as-of numerator. A zero or missing denominator yields NaN.
//
// Rankings: for each ranking date, the top-N counties by value (stable, so
// equal values keep file order) counted per state.
//
// Map points: each observation keyed by the 5-digit county FIPS code, the
// zero-padded state code followed by the zero-padded county code
// (6, 37 → "06037").
//
// All derived tables are bundled in a [Snapshot], built once by
// [BuildSnapshot] and never mutated.
package domain
