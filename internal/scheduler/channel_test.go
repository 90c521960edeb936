package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestNewChannelStrategy tests the creation and initialization of channelStrategy.
func TestNewChannelStrategy(t *testing.T) {
	tests := []struct {
		name       string
		workers    int
		buffer     int
		wantChans  int
		wantBuffer int
	}{
		{
			name:       "single worker",
			workers:    1,
			buffer:     4,
			wantChans:  1,
			wantBuffer: 4,
		},
		{
			name:       "several workers",
			workers:    6,
			buffer:     2,
			wantChans:  6,
			wantBuffer: 2,
		},
		{
			name:       "unbuffered",
			workers:    3,
			buffer:     0,
			wantChans:  3,
			wantBuffer: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newChannelStrategy(Config{Workers: tt.workers, Buffer: tt.buffer})

			if len(s.taskChans) != tt.wantChans {
				t.Fatalf("expected %d channels, got %d", tt.wantChans, len(s.taskChans))
			}

			for i, ch := range s.taskChans {
				if ch == nil {
					t.Errorf("channel %d is nil", i)
				}
				if cap(ch) != tt.wantBuffer {
					t.Errorf("channel %d has capacity %d, want %d", i, cap(ch), tt.wantBuffer)
				}
			}
		})
	}
}

// TestChannelStrategy_RoundRobin verifies that jobs are spread evenly over worker channels.
func TestChannelStrategy_RoundRobin(t *testing.T) {
	s := newChannelStrategy(Config{Workers: 3, Buffer: 10})
	defer s.Shutdown()

	for range 9 {
		if err := s.Submit(context.Background(), func() {}); err != nil {
			t.Fatalf("unexpected submit error: %v", err)
		}
	}

	for i, ch := range s.taskChans {
		if len(ch) != 3 {
			t.Errorf("channel %d holds %d jobs, want 3", i, len(ch))
		}
	}
}

// TestChannelStrategy_SubmitAfterShutdown ensures a closed strategy rejects jobs instead of panicking.
func TestChannelStrategy_SubmitAfterShutdown(t *testing.T) {
	s := newChannelStrategy(Config{Workers: 2, Buffer: 1})
	s.Shutdown()
	s.Shutdown() // second call is a no-op

	err := s.Submit(context.Background(), func() {})
	if !errors.Is(err, ErrSchedulerClosed) {
		t.Fatalf("expected ErrSchedulerClosed, got %v", err)
	}
}

// TestChannelStrategy_SubmitBlockedByFullQueue checks that a blocked submitter is released by
// context cancellation and by shutdown.
func TestChannelStrategy_SubmitBlockedByFullQueue(t *testing.T) {
	t.Run("context cancelled", func(t *testing.T) {
		s := newChannelStrategy(Config{Workers: 1, Buffer: 0})
		defer s.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := s.Submit(ctx, func() {})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected context.DeadlineExceeded, got %v", err)
		}
	})

	t.Run("shutdown", func(t *testing.T) {
		s := newChannelStrategy(Config{Workers: 1, Buffer: 0})

		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Submit(context.Background(), func() {})
		}()

		time.Sleep(20 * time.Millisecond)
		s.Shutdown()

		select {
		case err := <-errCh:
			if !errors.Is(err, ErrSchedulerClosed) {
				t.Fatalf("expected ErrSchedulerClosed, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("submit was not released by shutdown")
		}
	})
}

// TestStrategies_RunEveryJob runs all strategies and checks that every submitted job executes
// exactly once, including the ones still queued when Shutdown is called.
func TestStrategies_RunEveryJob(t *testing.T) {
	for _, kind := range []StrategyType{Shared, RoundRobin, WorkStealing} {
		t.Run(kind.String(), func(t *testing.T) {
			const workers = 4
			const jobs = 200

			s := New(kind, Config{Workers: workers, Buffer: jobs})

			var executed atomic.Int64
			for range jobs {
				if err := s.Submit(context.Background(), func() { executed.Add(1) }); err != nil {
					t.Fatalf("unexpected submit error: %v", err)
				}
			}
			s.Shutdown()

			var wg sync.WaitGroup
			for i := range workers {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					if err := s.Worker(context.Background(), id); err != nil {
						t.Errorf("worker %d returned error: %v", id, err)
					}
				}(i)
			}
			wg.Wait()

			if got := executed.Load(); got != jobs {
				t.Errorf("expected %d executed jobs, got %d", jobs, got)
			}
		})
	}
}

// TestStrategies_WorkerDrainsOnCancel ensures queued jobs still run when the worker context ends.
func TestStrategies_WorkerDrainsOnCancel(t *testing.T) {
	for _, kind := range []StrategyType{Shared, RoundRobin, WorkStealing} {
		t.Run(kind.String(), func(t *testing.T) {
			s := New(kind, Config{Workers: 1, Buffer: 5})
			defer s.Shutdown()

			var executed atomic.Int64
			for range 5 {
				_ = s.Submit(context.Background(), func() { executed.Add(1) })
			}

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := s.Worker(ctx, 0)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
			if got := executed.Load(); got != 5 {
				t.Errorf("expected 5 drained jobs, got %d", got)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	s, ok := New(RoundRobin, Config{Workers: 0, Buffer: -1}).(*channelStrategy)
	if !ok {
		t.Fatal("expected channelStrategy for RoundRobin")
	}
	if len(s.taskChans) != 1 {
		t.Errorf("expected worker count clamped to 1, got %d", len(s.taskChans))
	}

	if _, ok := New(Shared, Config{Workers: 2}).(*sharedStrategy); !ok {
		t.Error("expected sharedStrategy for Shared")
	}

	if _, ok := New(WorkStealing, Config{Workers: 2}).(*stealStrategy); !ok {
		t.Error("expected stealStrategy for WorkStealing")
	}
}
