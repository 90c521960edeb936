package pool

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"
)

func TestExecutorConfig_Normalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := ExecutorConfig{}.normalize()
		if cfg.Workers != runtime.NumCPU() {
			t.Errorf("expected %d workers, got %d", runtime.NumCPU(), cfg.Workers)
		}
		if cfg.Buffer != cfg.Workers {
			t.Errorf("expected buffer %d, got %d", cfg.Workers, cfg.Buffer)
		}
		if cfg.Kind != KindOSThread || cfg.Strategy != SchedulingShared {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("pinning only for os threads", func(t *testing.T) {
		cfg := ExecutorConfig{Kind: KindGoroutine, PinCPU: true}.normalize()
		if cfg.PinCPU {
			t.Error("goroutine executors cannot pin")
		}
	})

	t.Run("explicit values kept", func(t *testing.T) {
		cfg := ExecutorConfig{Workers: 3, Buffer: 7, Strategy: SchedulingRoundRobin}.normalize()
		if cfg.Workers != 3 || cfg.Buffer != 7 || cfg.Strategy != SchedulingRoundRobin {
			t.Errorf("unexpected config %+v", cfg)
		}
	})
}

func TestExecutor_RunsJobs(t *testing.T) {
	for _, cfg := range []ExecutorConfig{
		{Workers: 2},
		{Workers: 2, Strategy: SchedulingRoundRobin},
		{Workers: 2, PinCPU: true},
		{Workers: 2, Kind: KindGoroutine},
		{Workers: 2, Kind: KindGoroutine, Strategy: SchedulingWorkStealing},
	} {
		t.Run(cfg.Kind.String()+"/"+cfg.Strategy.String(), func(t *testing.T) {
			e := newTestExecutor(t, cfg)

			futures := make([]*Future[int], 10)
			for i := range futures {
				f, err := Go(context.Background(), e, func(ctx context.Context) (int, error) {
					return i * i, nil
				})
				if err != nil {
					t.Fatalf("submit %d: %v", i, err)
				}
				futures[i] = f
			}

			for i, f := range futures {
				v, err := f.Get()
				if err != nil || v != i*i {
					t.Errorf("future %d: got (%d, %v), want %d", i, v, err, i*i)
				}
			}
		})
	}
}

func TestExecutor_SubmitAfterShutdown(t *testing.T) {
	e := NewExecutor(ExecutorConfig{Workers: 1}, quietLogger())
	if err := e.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	_, err := Go(context.Background(), e, func(ctx context.Context) (int, error) {
		return 1, nil
	})
	if !errors.Is(err, ErrExecutorClosed) {
		t.Errorf("expected ErrExecutorClosed, got %v", err)
	}
	if !e.Closed() {
		t.Error("expected executor to report closed")
	}
}

func TestExecutor_ShutdownWaitsForQueuedJobs(t *testing.T) {
	e := NewExecutor(ExecutorConfig{Workers: 1, Buffer: 4, Kind: KindGoroutine}, quietLogger())

	var futures []*Future[int]
	for i := range 3 {
		f, err := Go(context.Background(), e, func(ctx context.Context) (int, error) {
			time.Sleep(10 * time.Millisecond)
			return i, nil
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		futures = append(futures, f)
	}

	if err := e.Shutdown(0); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	for i, f := range futures {
		if !f.IsReady() {
			t.Errorf("future %d not finished after shutdown", i)
		}
	}
}

func TestExecutor_ShutdownTimeout(t *testing.T) {
	e := NewExecutor(ExecutorConfig{Workers: 1, Kind: KindGoroutine}, quietLogger())

	release := make(chan struct{})
	defer close(release)

	_, err := Go(context.Background(), e, func(ctx context.Context) (int, error) {
		<-release
		return 0, nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := e.Shutdown(20 * time.Millisecond); !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("expected ErrShutdownTimeout, got %v", err)
	}
}

func TestExecutor_ShutdownIdempotent(t *testing.T) {
	e := NewExecutor(ExecutorConfig{Workers: 2}, quietLogger())

	for i := range 3 {
		if err := e.Shutdown(time.Second); err != nil {
			t.Errorf("shutdown %d: %v", i, err)
		}
	}
}

func TestExecutor_Identity(t *testing.T) {
	a := newTestExecutor(t, ExecutorConfig{Workers: 1})
	b := newTestExecutor(t, ExecutorConfig{Workers: 1})

	if a.ID() == b.ID() {
		t.Error("executors should have distinct ids")
	}
	if a.Config() != b.Config() {
		t.Error("equal configs should normalize identically")
	}
}
