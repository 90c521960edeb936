package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/utkarsh5026/parmap/returns"
)

const (
	missingRate = 0.02
	maxDrift    = 0.001
	minVol      = 0.005
	maxVol      = 0.03
)

type dataset struct {
	obs []returns.Observation
	cal *returns.Calendar
}

// synthesize builds a market of n symbols over the first `days` weekdays from start.
// Each symbol lists on a random day within the first tenth of the calendar and then
// misses about 2% of its days. The same seed gives the same market.
func synthesize(n, days int, start time.Time, seed uint64) dataset {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	calendar := weekdays(start, days)

	var obs []returns.Observation
	for s := range n {
		symbol := fmt.Sprintf("SYM%03d", s)
		drift := (rng.Float64()*2 - 1) * maxDrift
		vol := minVol + rng.Float64()*(maxVol-minVol)
		listed := rng.IntN(days/10 + 1)

		for _, d := range calendar[listed:] {
			if rng.Float64() < missingRate {
				continue
			}
			obs = append(obs, returns.Observation{
				Symbol: symbol,
				Date:   d,
				Ret:    drift + vol*rng.NormFloat64(),
			})
		}
	}

	return dataset{obs: obs, cal: returns.NewCalendar(calendar)}
}

func weekdays(start time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for d := returns.Day(start); len(out) < n; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, d)
		}
	}
	return out
}
