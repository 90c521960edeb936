package frame

import (
	"github.com/utkarsh5026/parmap/pool"
)

// ApplyOption configures an apply call.
type ApplyOption func(*applyConfig)

type applyConfig struct {
	shape    Shape
	observer pool.Observer
	pool     []pool.Option
}

// WithShape declares the shape class every result must have. Without it the first
// result decides.
func WithShape(s Shape) ApplyOption {
	return func(cfg *applyConfig) {
		cfg.shape = s
	}
}

// WithObserver reports progress of the apply. For parallel applies it is passed to
// pool.WithObserver.
func WithObserver(o pool.Observer) ApplyOption {
	return func(cfg *applyConfig) {
		cfg.observer = o
	}
}

// WithPoolOptions passes options to the pool call behind a parallel apply.
func WithPoolOptions(opts ...pool.Option) ApplyOption {
	return func(cfg *applyConfig) {
		cfg.pool = append(cfg.pool, opts...)
	}
}

func newApplyConfig(opts []ApplyOption) *applyConfig {
	cfg := &applyConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (cfg *applyConfig) poolOptions() []pool.Option {
	opts := append([]pool.Option(nil), cfg.pool...)
	if cfg.observer != nil {
		opts = append(opts, pool.WithObserver(cfg.observer))
	}
	return opts
}
