package domain

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

// RankTopStates selects the n counties with the highest value on date and
// counts them by state. Sorting is stable, so counties with equal values keep
// their file order and the earlier one wins the last slot. Missing values are
// never ranked. States without a selected county are omitted; the rest are
// ordered by state code.
func RankTopStates(t Table, date string, n int) (Ranking, error) {
	if n <= 0 {
		return Ranking{}, errors.New("rank top states: n must be positive")
	}
	col, ok := t.DateIndex(date)
	if !ok {
		return Ranking{}, fmt.Errorf("rank top states %s: %w", date, ErrUnknownDate)
	}

	type ranked struct {
		state string
		value float64
	}
	candidates := make([]ranked, 0, len(t.Records))
	for _, rec := range t.Records {
		v := valueAt(rec, col)
		if math.IsNaN(v) {
			continue
		}
		candidates = append(candidates, ranked{state: rec.State, value: v})
	}

	slices.SortStableFunc(candidates, func(a, b ranked) int {
		return cmp.Compare(b.value, a.value)
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	byState := map[string]int{}
	for _, c := range candidates {
		byState[c.state]++
	}
	counts := make([]RankingCount, 0, len(byState))
	for state, count := range byState {
		counts = append(counts, RankingCount{State: state, Count: count})
	}
	slices.SortFunc(counts, func(a, b RankingCount) int {
		return cmp.Compare(a.State, b.State)
	})

	return Ranking{Date: date, Counts: counts}, nil
}
