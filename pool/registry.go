package pool

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrRegistryClosed = errors.New("executor registry is shut down")
)

// Registry keeps one reusable executor per executor config. Executors are created on
// first use and live until the registry is shut down, so repeated calls with the same
// settings do not pay worker start-up again.
type Registry struct {
	mu        sync.Mutex
	executors map[ExecutorConfig]*Executor
	closed    bool
	log       logrus.FieldLogger
}

// NewRegistry creates an empty registry. A nil logger uses the logrus standard logger.
func NewRegistry(logger logrus.FieldLogger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{
		executors: make(map[ExecutorConfig]*Executor),
		log:       logger,
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry used by calls that neither name a
// registry nor ask for a scoped executor.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(nil)
	})
	return defaultRegistry
}

// Acquire returns the live executor for cfg, creating it if needed. An executor that was
// shut down by its user is replaced.
func (r *Registry) Acquire(cfg ExecutorConfig) (*Executor, error) {
	cfg = cfg.normalize()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}

	if e, ok := r.executors[cfg]; ok && !e.Closed() {
		return e, nil
	}

	e := NewExecutor(cfg, r.log)
	r.executors[cfg] = e
	return e, nil
}

// With acquires the executor for cfg and passes it to fn.
func (r *Registry) With(cfg ExecutorConfig, fn func(*Executor) error) error {
	e, err := r.Acquire(cfg)
	if err != nil {
		return err
	}
	return fn(e)
}

// Len returns the number of executors the registry holds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.executors)
}

// Shutdown shuts every executor down, each within timeout, and closes the registry.
// Later calls return nil.
func (r *Registry) Shutdown(timeout time.Duration) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	executors := r.executors
	r.executors = make(map[ExecutorConfig]*Executor)
	r.mu.Unlock()

	var wg sync.WaitGroup
	errs := make([]error, 0, len(executors))
	var mu sync.Mutex
	for _, e := range executors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.Shutdown(timeout); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
