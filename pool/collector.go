package pool

import (
	"errors"
	"fmt"
)

type entry[R any] struct {
	index   int
	outcome Outcome[R]
}

// collector gathers the outcomes of one batch. In submission order slot i always
// holds task i; in completion order slots fill as tasks finish.
type collector[R any] struct {
	outcomes        []Outcome[R]
	order           []int
	completionOrder bool
}

func newCollector[R any](n int, completionOrder bool) *collector[R] {
	return &collector[R]{
		outcomes:        make([]Outcome[R], 0, n),
		order:           make([]int, 0, n),
		completionOrder: completionOrder,
	}
}

func (c *collector[R]) add(e entry[R]) {
	c.outcomes = append(c.outcomes, e.outcome)
	c.order = append(c.order, e.index)
}

// sorted returns the submission indices and outcomes, ordered by index unless the
// collector keeps completion order.
func (c *collector[R]) sorted() ([]int, []Outcome[R]) {
	if c.completionOrder {
		return c.order, c.outcomes
	}

	indices := make([]int, len(c.order))
	outcomes := make([]Outcome[R], len(c.order))
	for i, idx := range c.order {
		indices[idx] = idx
		outcomes[idx] = c.outcomes[i]
	}
	return indices, outcomes
}

// results resolves every outcome: timeouts become replacer, failures leave the zero
// value in their slot and are joined into the returned error.
func (c *collector[R]) results(replacer R) ([]int, []R, error) {
	indices, outcomes := c.sorted()

	values := make([]R, len(outcomes))
	var errs []error
	for i, o := range outcomes {
		v, err := o.Resolve(replacer)
		if err != nil {
			errs = append(errs, taskError(indices[i], err))
		}
		values[i] = v
	}
	return indices, values, errors.Join(errs...)
}

func taskError(index int, err error) error {
	return fmt.Errorf("task %d: %w", index, err)
}
