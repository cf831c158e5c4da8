// Command genmock writes a deterministic synthetic county ZHVI export in the
// wide CSV layout the dashboard loads. The generated month-end dates cover
// every anchor of the default dataset profile, a few counties start late
// (empty leading cells) and a few have a zero anchor value, so undefined
// growth shows up in the output.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/county_zhvi.csv -counties 400 -seed 7
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"time"
)

type state struct {
	code string
	fips int
	// base is a typical 2000 county value; spread is the relative range.
	base   float64
	spread float64
}

var states = []state{
	{code: "AK", fips: 2, base: 160000, spread: 0.4},
	{code: "AZ", fips: 4, base: 130000, spread: 0.5},
	{code: "CA", fips: 6, base: 240000, spread: 0.9},
	{code: "CO", fips: 8, base: 170000, spread: 0.7},
	{code: "FL", fips: 12, base: 110000, spread: 0.6},
	{code: "HI", fips: 15, base: 280000, spread: 0.3},
	{code: "MA", fips: 25, base: 220000, spread: 0.5},
	{code: "NY", fips: 36, base: 150000, spread: 0.9},
	{code: "OH", fips: 39, base: 90000, spread: 0.3},
	{code: "TX", fips: 48, base: 85000, spread: 0.5},
	{code: "WA", fips: 53, base: 170000, spread: 0.6},
	{code: "WY", fips: 56, base: 110000, spread: 0.5},
}

// Municipal codes are odd numbers below 1000, so each state holds at most
// 500 counties.
const countiesPerState = 500

var maxCounties = countiesPerState * len(states)

var header = []string{
	"RegionID", "SizeRank", "RegionName", "RegionType", "StateName",
	"State", "Metro", "StateCodeFIPS", "MunicipalCodeFIPS",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the synthetic CSV")
	counties := flag.Int("counties", 300, "number of counties to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	start := flag.String("start", "2000-01-31", "first month-end date")
	end := flag.String("end", "2021-10-31", "last month-end date")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *counties <= 0 || *counties > maxCounties {
		return fmt.Errorf("-counties must be between 1 and %d", maxCounties)
	}

	dates, err := monthEnds(*start, *end)
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer f.Close()

	if err := generate(f, *counties, *seed, dates); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %d counties x %d months to %s", *counties, len(dates), *out)
	return nil
}

// monthEnds lists the last day of every month from start to end inclusive.
func monthEnds(start, end string) ([]string, error) {
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return nil, fmt.Errorf("parse -start: %w", err)
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return nil, fmt.Errorf("parse -end: %w", err)
	}
	if e.Before(s) {
		return nil, fmt.Errorf("-end %s is before -start %s", end, start)
	}

	var out []string
	for y, m := s.Year(), s.Month(); ; m++ {
		d := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
		if d.After(e) {
			break
		}
		out = append(out, d.Format(time.DateOnly))
	}
	return out, nil
}

func generate(w io.Writer, counties int, seed uint64, dates []string) error {
	if counties > maxCounties {
		return fmt.Errorf("at most %d counties fit in %d states", maxCounties, len(states))
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	cw := csv.NewWriter(w)

	if err := cw.Write(append(append([]string{}, header...), dates...)); err != nil {
		return err
	}

	perState := map[string]int{}
	for i := range counties {
		k := rng.IntN(len(states))
		for perState[states[k].code] >= countiesPerState {
			k = (k + 1) % len(states)
		}
		st := states[k]
		perState[st.code]++
		n := perState[st.code]

		row := make([]string, 0, len(header)+len(dates))
		row = append(row,
			strconv.Itoa(1000+i),
			strconv.Itoa(i),
			fmt.Sprintf("%s County %d", st.code, n),
			"County",
			st.code,
			st.code,
			metro(rng, st.code, n),
			strconv.Itoa(st.fips),
			strconv.Itoa(2*n-1),
		)
		row = append(row, series(rng, st, len(dates))...)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func metro(rng *rand.Rand, code string, n int) string {
	if rng.Float64() < 0.3 {
		return ""
	}
	return fmt.Sprintf("%s Metro %d", code, (n+2)/3)
}

// series draws a monthly random walk with a mild upward drift.
func series(rng *rand.Rand, st state, months int) []string {
	out := make([]string, months)

	lead := 0
	if rng.Float64() < 0.1 {
		lead = rng.IntN(months / 2)
	}
	zeroAt := -1
	if rng.Float64() < 0.02 {
		zeroAt = rng.IntN(months)
	}

	v := st.base * (1 + st.spread*(rng.Float64()*2-1))
	drift := 0.002 + rng.Float64()*0.004
	for i := range months {
		v *= 1 + drift + rng.NormFloat64()*0.004
		switch {
		case i < lead:
			out[i] = ""
		case i == zeroAt:
			out[i] = "0"
		default:
			out[i] = strconv.FormatFloat(math.Round(v), 'f', 0, 64)
		}
	}
	return out
}
