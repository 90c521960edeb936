package returns

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrInvalidKeyDay = errors.New("key day must be within [1, 28]")
	ErrNoCalendar    = errors.New("no trading calendar")
)

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Calendar is an ordered list of distinct trading days.
type Calendar struct {
	days []time.Time
}

// NewCalendar sorts and deduplicates days after truncating them to dates.
func NewCalendar(days []time.Time) *Calendar {
	out := make([]time.Time, len(days))
	for i, d := range days {
		out[i] = Day(d)
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	out = slices.CompactFunc(out, func(a, b time.Time) bool { return a.Equal(b) })
	return &Calendar{days: out}
}

func (c *Calendar) Days() []time.Time { return slices.Clone(c.days) }

func (c *Calendar) Len() int { return len(c.days) }

// Period is one custom "month": from a start trading day through End, the trading day
// before the next start. The last period of a calendar has no end.
type Period struct {
	Start time.Time
	End   time.Time
}

// Open reports whether the period has no known end.
func (p Period) Open() bool { return p.End.IsZero() }

// KeyDayPeriods splits the calendar into months that start on the first trading day on
// or after keyDay of each calendar month. A day starts a month when it is on or after
// the key date of its own month while the trading day before it is not; the first
// calendar day therefore never starts one.
func (c *Calendar) KeyDayPeriods(keyDay int) ([]Period, error) {
	if keyDay < 1 || keyDay > 28 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKeyDay, keyDay)
	}

	var starts []int
	for i := 1; i < len(c.days); i++ {
		d := c.days[i]
		key := time.Date(d.Year(), d.Month(), keyDay, 0, 0, 0, 0, time.UTC)
		if !d.Before(key) && c.days[i-1].Before(key) {
			starts = append(starts, i)
		}
	}

	periods := make([]Period, len(starts))
	for k, s := range starts {
		periods[k].Start = c.days[s]
		if k+1 < len(starts) {
			periods[k].End = c.days[starts[k+1]-1]
		}
	}
	return periods, nil
}
