// Package returns computes per-symbol forward cumulative returns and custom key-day
// monthly returns, one symbol per pool task.
package returns

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/utkarsh5026/parmap/frame"
	"github.com/utkarsh5026/parmap/pool"
)

// Calculator computes returns over a fixed set of observations and calendar.
type Calculator struct {
	obs      []Observation
	calendar *Calendar
	poolOpts []pool.Option
	log      log.FieldLogger

	groupOnce sync.Once
	grouped   *frame.Grouped[string, Observation]

	mu      sync.Mutex
	periods map[int][]Period
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithPoolOptions sets the options of every parallel per-symbol call.
func WithPoolOptions(opts ...pool.Option) Option {
	return func(c *Calculator) {
		c.poolOpts = append(c.poolOpts, opts...)
	}
}

// WithLogger sets the calculator's logger.
func WithLogger(l log.FieldLogger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCalculator takes ownership of obs. The calendar is only needed for monthly returns
// and may be nil otherwise.
func NewCalculator(obs []Observation, calendar *Calendar, opts ...Option) *Calculator {
	c := &Calculator{
		obs:      obs,
		calendar: calendar,
		log:      log.StandardLogger(),
		periods:  make(map[int][]Period),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) groups() *frame.Grouped[string, Observation] {
	c.groupOnce.Do(func() {
		c.grouped = frame.GroupBy(c.obs, func(o Observation) string { return o.Symbol })
		c.log.WithField("symbols", c.grouped.Len()).Debug("grouped observations")
	})
	return c.grouped
}

// Periods returns the key-day periods of the calendar. Results are cached per key day.
func (c *Calculator) Periods(keyDay int) ([]Period, error) {
	if keyDay < 1 || keyDay > 28 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKeyDay, keyDay)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.periods[keyDay]; ok {
		return p, nil
	}

	if c.calendar == nil {
		return nil, ErrNoCalendar
	}
	p, err := c.calendar.KeyDayPeriods(keyDay)
	if err != nil {
		return nil, err
	}
	c.periods[keyDay] = p
	return p, nil
}

// MonthlyReturns computes the monthly returns of every symbol, months starting on
// keyDay. Rows are ordered by symbol, then by start.
func (c *Calculator) MonthlyReturns(ctx context.Context, keyDay int) ([]MonthlyReturn, error) {
	periods, err := c.Periods(keyDay)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := frame.ApplyGroups(ctx, c.groups(), func(ctx context.Context, g frame.Group[string, Observation]) ([]MonthlyReturn, error) {
		return MonthlyCore(g.Rows, periods), nil
	}, c.poolOpts...)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(log.Fields{
		"key-day":  keyDay,
		"rows":     len(out),
		"duration": time.Since(start),
	}).Debug("monthly returns computed")
	return out, nil
}

// ForwardReturns computes, for every observation, the compounded return of its symbol
// from m to n trading rows ahead. The result is aligned with the observations the
// calculator was built with; rows without a full window are NaN.
func (c *Calculator) ForwardReturns(ctx context.Context, m, n int) ([]float64, error) {
	if m < 1 || n < m {
		return nil, fmt.Errorf("%w: m=%d n=%d", ErrInvalidHorizon, m, n)
	}

	type placed struct {
		pos []int
		val []float64
	}

	parts, err := frame.ApplyGroups(ctx, c.groups(), func(ctx context.Context, g frame.Group[string, Observation]) ([]placed, error) {
		order := make([]int, len(g.Rows))
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int {
			return cmp.Compare(g.Rows[a].Date.UnixNano(), g.Rows[b].Date.UnixNano())
		})

		rets := make([]float64, len(order))
		pos := make([]int, len(order))
		for k, i := range order {
			rets[k] = g.Rows[i].Ret
			pos[k] = g.Positions[i]
		}

		fwd, err := ForwardCore(ctx, rets, m, n)
		if err != nil {
			return nil, err
		}
		return []placed{{pos: pos, val: fwd}}, nil
	}, c.poolOpts...)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(c.obs))
	for i := range out {
		out[i] = math.NaN()
	}
	for _, p := range parts {
		for k, pos := range p.pos {
			out[pos] = p.val[k]
		}
	}
	return out, nil
}
