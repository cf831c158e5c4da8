// Command validate loads a county ZHVI export, derives the dashboard snapshot
// and runs integrity checks over the result: month-end date contiguity,
// growth anchors and recomputation, ranking totals, geo key shape and
// uniqueness, and the long/wide reshape round trip.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data County_zhvi_uc_sfrcondo_tier_0.33_0.67_sm_sa_month.csv \
//	  -profile config/profile.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/couchcryptid/county-home-values/internal/adapter/csvfile"
	"github.com/couchcryptid/county-home-values/internal/config"
	"github.com/couchcryptid/county-home-values/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", config.DefaultDataFile, "path to the county ZHVI CSV")
	profilePath := flag.String("profile", "", "optional YAML dataset profile")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataPath, *profilePath); code != 0 {
		os.Exit(code)
	}
}

func run(dataPath, profilePath string) int {
	fmt.Println("=== County Home Values Validation ===")
	fmt.Println()

	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load profile: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	table, err := csvfile.NewReader(dataPath, logger).Extract(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load data: %v\n", err)
		return 1
	}

	snap, err := domain.BuildSnapshot(table, profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: build snapshot: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSchema(table),
		validateGrowth(table, snap),
		validateRankings(table, snap),
		validateGeo(snap),
		validateReshape(table),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d counties, %d dates (%s to %s), %d states\n",
		len(table.Records), len(table.Dates), table.Dates[0], table.Dates[len(table.Dates)-1], len(snap.States))

	for _, p := range phases {
		for _, n := range p.notes {
			fmt.Printf("  %s: %s\n", p.name, n)
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Schema ──
// Dates must be consecutive month ends; region ids must be unique.

func validateSchema(t domain.Table) *phase {
	p := &phase{name: "Phase 1: Schema (dates, region ids)"}

	var prev time.Time
	for i, s := range t.Dates {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			p.errorf("date column %d: %v", i, err)
			continue
		}
		if !isMonthEnd(d) {
			p.errorf("date %s is not a month end", s)
		}
		if i > 0 && !prev.IsZero() {
			want := time.Date(prev.Year(), prev.Month()+2, 0, 0, 0, 0, 0, time.UTC)
			if !d.Equal(want) {
				p.errorf("gap after %s: next date is %s, want %s", prev.Format(time.DateOnly), s, want.Format(time.DateOnly))
			}
		}
		prev = d
	}

	seen := make(map[int]int, len(t.Records))
	for i, rec := range t.Records {
		if j, ok := seen[rec.RegionID]; ok {
			p.errorf("region %d appears in rows %d and %d", rec.RegionID, j, i)
			continue
		}
		seen[rec.RegionID] = i
		if len(rec.Values) != len(t.Dates) {
			p.errorf("region %d has %d values for %d dates", rec.RegionID, len(rec.Values), len(t.Dates))
		}
	}
	return p
}

func isMonthEnd(d time.Time) bool {
	return d.AddDate(0, 0, 1).Day() == 1
}

// ── Phase 2: Growth ──
// Every growth record must match a recomputation from the table.

func validateGrowth(t domain.Table, snap *domain.Snapshot) *phase {
	p := &phase{name: "Phase 2: Growth (anchors, recomputation)"}

	windows := snap.Profile.Windows
	if want := len(windows) * len(t.Records); len(snap.Growth) != want {
		p.errorf("have %d growth records, want %d", len(snap.Growth), want)
		return p
	}

	for wi, w := range windows {
		num, okNum := t.DateIndex(w.Numerator)
		den, okDen := t.DateIndex(w.Denominator)
		if !okNum || !okDen {
			p.errorf("window %s: anchors %s/%s not in table", w.Window, w.Numerator, w.Denominator)
			continue
		}
		for ri, rec := range t.Records {
			got := snap.Growth[wi*len(t.Records)+ri]
			want := domain.AnnualizedGrowth(rec.Values[num], rec.Values[den], w.Months)
			if got.RegionID != rec.RegionID || got.Window != w.Window {
				p.errorf("window %s row %d: record order mismatch (region %d)", w.Window, ri, got.RegionID)
				continue
			}
			if !floatEq(got.Percent, want) {
				p.errorf("window %s region %d: growth %v, recomputed %v", w.Window, rec.RegionID, got.Percent, want)
			}
		}
	}

	for _, w := range windows {
		p.notef("%s undefined for %d counties", w.Window, snap.UndefinedGrowth()[w.Window])
	}
	return p
}

// ── Phase 3: Rankings ──
// Each ranking sums to top-N, or to the number of defined values when fewer.

func validateRankings(t domain.Table, snap *domain.Snapshot) *phase {
	p := &phase{name: "Phase 3: Rankings (totals)"}

	topN := snap.Profile.TopN
	for _, r := range snap.Rankings {
		idx, ok := t.DateIndex(r.Date)
		if !ok {
			p.errorf("ranking %s: date not in table", r.Date)
			continue
		}
		defined := 0
		for _, rec := range t.Records {
			if !math.IsNaN(rec.Values[idx]) {
				defined++
			}
		}
		if want := min(topN, defined); r.Total() != want {
			p.errorf("ranking %s sums to %d, want %d", r.Date, r.Total(), want)
		}
		for _, c := range r.Counts {
			if c.Count <= 0 {
				p.errorf("ranking %s: state %s has count %d", r.Date, c.State, c.Count)
			}
		}
	}
	return p
}

// ── Phase 4: Geo ──
// Keys are 5 digits and unique per county.

func validateGeo(snap *domain.Snapshot) *phase {
	p := &phase{name: "Phase 4: Geo keys (shape, uniqueness)"}

	n := len(snap.Dates)
	if n == 0 {
		return p
	}
	owners := map[string]int{}
	for i, rec := range snap.Records {
		key := snap.Geo[i*n].FIPS
		if len(key) != 5 {
			p.errorf("region %d: key %q is not 5 digits", rec.RegionID, key)
		}
		for _, c := range key {
			if c < '0' || c > '9' {
				p.errorf("region %d: key %q is not numeric", rec.RegionID, key)
				break
			}
		}
		if other, ok := owners[key]; ok {
			p.errorf("key %s shared by regions %d and %d", key, other, rec.RegionID)
			continue
		}
		owners[key] = rec.RegionID
	}
	return p
}

// ── Phase 5: Reshape ──
// Widening the long table must give back the loaded table.

func validateReshape(t domain.Table) *phase {
	p := &phase{name: "Phase 5: Reshape (melt/widen round trip)"}

	wide, err := domain.Widen(domain.Melt(t))
	if err != nil {
		p.errorf("widen: %v", err)
		return p
	}
	if diff := cmp.Diff(t, wide, cmpopts.EquateNaNs(), cmpopts.EquateEmpty()); diff != "" {
		p.errorf("round trip differs (-loaded +widened):\n%s", diff)
	}
	return p
}

func floatEq(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < 1e-9
}
