package returns

import (
	"math"
	"slices"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Observation is one daily return of one symbol.
type Observation struct {
	Symbol string
	Date   time.Time
	Ret    float64
}

// MonthlyReturn is the compounded return of one symbol over one period.
type MonthlyReturn struct {
	Symbol      string
	Start       time.Time
	End         time.Time // last observation used
	EndExpected time.Time // period end from the calendar
	Ret         float64
}

// MonthlyCore computes the monthly returns of a single symbol. rows are sorted by date
// first. A month is only reported when the symbol traded on the period's start day and
// has an observation on or after the period's end; the product then runs from the start
// row through that observation, skipping NaN returns. Open periods are never reported.
func MonthlyCore(rows []Observation, periods []Period) []MonthlyReturn {
	rows = slices.Clone(rows)
	slices.SortStableFunc(rows, func(a, b Observation) int { return a.Date.Compare(b.Date) })

	asof := make([]Period, len(rows))
	matched := make([]bool, len(rows))
	for i, row := range rows {
		// latest period starting on or before the row
		k := sort.Search(len(periods), func(k int) bool { return periods[k].Start.After(Day(row.Date)) }) - 1
		if k >= 0 {
			asof[i], matched[i] = periods[k], true
		}
	}

	var out []MonthlyReturn
	n := len(rows)
	for i, j := 0, 0; i < n && j < n; {
		if !matched[i] || !Day(rows[i].Date).Equal(asof[i].Start) {
			i++
			continue
		}

		p := asof[i]
		for j = i; j < n; j++ {
			if p.Open() || Day(rows[j].Date).Before(p.End) {
				continue
			}

			out = append(out, MonthlyReturn{
				Symbol:      rows[i].Symbol,
				Start:       Day(rows[i].Date),
				End:         Day(rows[j].Date),
				EndExpected: p.End,
				Ret:         compound(rows[i : j+1]),
			})
			// The closing row may itself start the next month.
			i = max(j, i+1)
			break
		}
	}
	return out
}

// compound returns prod(1 + r) - 1 over the non-NaN returns.
func compound(rows []Observation) float64 {
	growth := make([]float64, 0, len(rows))
	for _, r := range rows {
		if !math.IsNaN(r.Ret) {
			growth = append(growth, 1+r.Ret)
		}
	}
	return floats.Prod(growth) - 1
}
