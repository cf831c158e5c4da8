package domain

import (
	"fmt"
	"math"
)

// GrowthWindow identifies one of the fixed look-back windows.
type GrowthWindow int

const (
	WindowYTD GrowthWindow = iota
	WindowThreeYear
	WindowTenYear
)

// String returns the short name used in profiles and metric labels.
func (w GrowthWindow) String() string {
	switch w {
	case WindowYTD:
		return "ytd"
	case WindowThreeYear:
		return "3yr"
	case WindowTenYear:
		return "10yr"
	default:
		return fmt.Sprintf("window(%d)", int(w))
	}
}

// Label returns the series name shown in the growth chart legend.
func (w GrowthWindow) Label() string {
	switch w {
	case WindowYTD:
		return "Annualized YTD % Growth"
	case WindowThreeYear:
		return "Annualized 3yr % Growth"
	case WindowTenYear:
		return "Annualized 10yr % Growth"
	default:
		return w.String()
	}
}

// ParseGrowthWindow is the inverse of GrowthWindow.String.
func ParseGrowthWindow(s string) (GrowthWindow, error) {
	switch s {
	case "ytd":
		return WindowYTD, nil
	case "3yr":
		return WindowThreeYear, nil
	case "10yr":
		return WindowTenYear, nil
	default:
		return 0, fmt.Errorf("unknown growth window %q", s)
	}
}

// GrowthSpec anchors a window to two date columns.
type GrowthSpec struct {
	Window      GrowthWindow
	Numerator   string
	Denominator string
	Months      int
}

// AnnualizedGrowth returns ((num/denom)^(12/months) - 1) * 100.
// The result is NaN when either value is missing, denom is zero, or months is
// not positive.
func AnnualizedGrowth(num, denom float64, months int) float64 {
	if months <= 0 || math.IsNaN(num) || math.IsNaN(denom) || denom == 0 {
		return math.NaN()
	}
	return (math.Pow(num/denom, 12/float64(months)) - 1) * 100
}

// ComputeGrowth produces one GrowthRecord per county per spec, grouped by
// spec in the order given. Records with undefined growth are kept.
func ComputeGrowth(t Table, specs []GrowthSpec) ([]GrowthRecord, error) {
	out := make([]GrowthRecord, 0, len(t.Records)*len(specs))
	for _, spec := range specs {
		num, ok := t.DateIndex(spec.Numerator)
		if !ok {
			return nil, fmt.Errorf("growth %s numerator %s: %w", spec.Window, spec.Numerator, ErrUnknownDate)
		}
		denom, ok := t.DateIndex(spec.Denominator)
		if !ok {
			return nil, fmt.Errorf("growth %s denominator %s: %w", spec.Window, spec.Denominator, ErrUnknownDate)
		}
		for _, rec := range t.Records {
			out = append(out, GrowthRecord{
				RegionID: rec.RegionID,
				County:   rec.County,
				State:    rec.State,
				Window:   spec.Window,
				Percent:  AnnualizedGrowth(valueAt(rec, num), valueAt(rec, denom), spec.Months),
			})
		}
	}
	return out, nil
}

// valueAt tolerates short value rows by treating absent cells as missing.
func valueAt(rec RawRecord, i int) float64 {
	if i < 0 || i >= len(rec.Values) {
		return math.NaN()
	}
	return rec.Values[i]
}
