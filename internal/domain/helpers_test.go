package domain

import (
	"fmt"
	"math"
)

var nan = math.NaN()

func record(id int, name, state string, stateFIPS, countyFIPS int, values ...float64) RawRecord {
	return RawRecord{
		RegionID:      id,
		Name:          name,
		County:        CountyLabel(name, state),
		State:         state,
		Metro:         name + " Metro",
		StateFIPS:     stateFIPS,
		MunicipalFIPS: countyFIPS,
		Values:        values,
	}
}

// profileTable has every date the default profile needs.
func profileTable(records ...RawRecord) Table {
	return Table{
		Dates:   []string{"2011-10-31", "2018-10-31", "2020-12-31", "2021-09-30", "2021-10-31"},
		Records: records,
	}
}

// rankedTable builds n counties in the given states, round-robin, with
// strictly decreasing values on a single date.
func rankedTable(n int, states ...string) Table {
	t := Table{Dates: []string{"2021-10-31"}}
	for i := 0; i < n; i++ {
		state := states[i%len(states)]
		t.Records = append(t.Records, record(i+1, fmt.Sprintf("County %d", i+1), state, 1, i%1000, float64(1_000_000-i)))
	}
	return t
}
