package frame

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/utkarsh5026/parmap/pool"
)

// Group is the rows sharing one key, with their positions in the grouped input.
type Group[K cmp.Ordered, R any] struct {
	Key       K
	Rows      []R
	Positions []int
}

// Grouped is the result of GroupBy: groups sorted by key.
type Grouped[K cmp.Ordered, R any] struct {
	groups []Group[K, R]
}

// GroupBy splits rows by key. Groups are ordered by key and keep the input order of
// their rows.
func GroupBy[K cmp.Ordered, R any](rows []R, key func(R) K) *Grouped[K, R] {
	byKey := make(map[K]int)
	var groups []Group[K, R]

	for i, row := range rows {
		k := key(row)
		g, ok := byKey[k]
		if !ok {
			g = len(groups)
			byKey[k] = g
			groups = append(groups, Group[K, R]{Key: k})
		}
		groups[g].Rows = append(groups[g].Rows, row)
		groups[g].Positions = append(groups[g].Positions, i)
	}

	slices.SortFunc(groups, func(a, b Group[K, R]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return &Grouped[K, R]{groups: groups}
}

func (g *Grouped[K, R]) Len() int { return len(g.groups) }

// Keys returns the group keys in order.
func (g *Grouped[K, R]) Keys() []K {
	keys := make([]K, len(g.groups))
	for i, gr := range g.groups {
		keys[i] = gr.Key
	}
	return keys
}

// Groups returns copies of the groups in key order.
func (g *Grouped[K, R]) Groups() []Group[K, R] {
	out := make([]Group[K, R], len(g.groups))
	for i, gr := range g.groups {
		out[i] = gr.clone()
	}
	return out
}

func (g Group[K, R]) clone() Group[K, R] {
	return Group[K, R]{
		Key:       g.Key,
		Rows:      slices.Clone(g.Rows),
		Positions: slices.Clone(g.Positions),
	}
}

// ApplyGroups runs fn on every group in parallel and concatenates the outputs in key
// order, whatever order the groups finish in.
func ApplyGroups[K cmp.Ordered, R, Out any](
	ctx context.Context,
	g *Grouped[K, R],
	fn func(ctx context.Context, group Group[K, R]) ([]Out, error),
	opts ...pool.Option,
) ([]Out, error) {
	parts, err := pool.Map(ctx, g.Groups(), pool.ProcessFunc[Group[K, R], []Out](fn), opts...)
	if err != nil {
		return nil, err
	}
	return slices.Concat(parts...), nil
}

// ApplyGroupValues runs fn on every group in parallel and stacks the results into a
// Frame indexed by group key. Every result must have the same shape class and width.
func ApplyGroupValues[K cmp.Ordered, R any](
	ctx context.Context,
	g *Grouped[K, R],
	fn func(ctx context.Context, group Group[K, R]) (Value, error),
	opts ...ApplyOption,
) (*Frame[K], error) {
	cfg := newApplyConfig(opts)

	values, err := pool.Map(ctx, g.Groups(), pool.ProcessFunc[Group[K, R], Value](fn), cfg.poolOptions()...)
	if err != nil {
		return nil, err
	}

	keys := g.Keys()
	check := newShapeCheck(cfg.shape)
	for i, v := range values {
		if err := check.check(fmt.Sprintf("group %v", keys[i]), v); err != nil {
			return nil, err
		}
	}
	return assemble(keys, values, check.shape), nil
}
