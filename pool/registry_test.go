package pool

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestRegistry_AcquireReusesExecutor(t *testing.T) {
	r := newTestRegistry(t)

	a, err := r.Acquire(ExecutorConfig{Workers: 2})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	b, err := r.Acquire(ExecutorConfig{Workers: 2})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if a != b || a.ID() != b.ID() {
		t.Error("expected the same executor for the same config")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 executor, got %d", r.Len())
	}
}

func TestRegistry_EquivalentConfigsShare(t *testing.T) {
	r := newTestRegistry(t)

	a, _ := r.Acquire(ExecutorConfig{})
	b, _ := r.Acquire(ExecutorConfig{Workers: runtime.NumCPU(), Buffer: runtime.NumCPU()})

	if a != b {
		t.Error("default and explicit default configs should share an executor")
	}
}

func TestRegistry_DistinctConfigs(t *testing.T) {
	r := newTestRegistry(t)

	a, _ := r.Acquire(ExecutorConfig{Workers: 2})
	b, _ := r.Acquire(ExecutorConfig{Workers: 2, Kind: KindGoroutine})

	if a == b {
		t.Error("different kinds must not share an executor")
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 executors, got %d", r.Len())
	}
}

func TestRegistry_ConcurrentAcquire(t *testing.T) {
	r := newTestRegistry(t)

	const callers = 50
	got := make([]*Executor, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := r.Acquire(ExecutorConfig{Workers: 3})
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			got[i] = e
		}()
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if got[i] != got[0] {
			t.Fatalf("caller %d got a different executor", i)
		}
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 executor, got %d", r.Len())
	}
}

func TestRegistry_Shutdown(t *testing.T) {
	r := NewRegistry(quietLogger())

	a, _ := r.Acquire(ExecutorConfig{Workers: 1})
	b, _ := r.Acquire(ExecutorConfig{Workers: 2})

	if err := r.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !a.Closed() || !b.Closed() {
		t.Error("all executors should be shut down")
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}

	if _, err := r.Acquire(ExecutorConfig{Workers: 1}); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("expected ErrRegistryClosed, got %v", err)
	}
	if err := r.Shutdown(time.Second); err != nil {
		t.Errorf("second shutdown should be a no-op, got %v", err)
	}

	_, err := IMap(context.Background(), []int{1}, func(ctx context.Context, n int) (int, error) {
		return n, nil
	}, WithRegistry(r))
	if !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("expected ErrRegistryClosed from IMap, got %v", err)
	}
}

func TestRegistry_ReplacesClosedExecutor(t *testing.T) {
	r := newTestRegistry(t)

	a, _ := r.Acquire(ExecutorConfig{Workers: 1})
	_ = a.Shutdown(time.Second)

	b, err := r.Acquire(ExecutorConfig{Workers: 1})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if a == b || b.Closed() {
		t.Error("expected a fresh executor after the old one was shut down")
	}
}

func TestRegistry_With(t *testing.T) {
	r := newTestRegistry(t)
	sentinel := errors.New("from fn")

	var seen *Executor
	err := r.With(ExecutorConfig{Workers: 1}, func(e *Executor) error {
		seen = e
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected fn error, got %v", err)
	}

	e, _ := r.Acquire(ExecutorConfig{Workers: 1})
	if seen != e {
		t.Error("With should hand out the registry executor")
	}
}

func TestIMap_ReusesRegistryExecutor(t *testing.T) {
	r := newTestRegistry(t)
	fn := func(ctx context.Context, n int) (int, error) { return n, nil }

	for range 5 {
		if _, err := IMap(context.Background(), []int{1, 2, 3}, fn, WithRegistry(r), WithWorkerCount(2)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if r.Len() != 1 {
		t.Errorf("expected repeated calls to share one executor, got %d", r.Len())
	}
}

func TestDefaultRegistry_Singleton(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry should return the same instance")
	}
}
