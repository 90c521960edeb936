package pool

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/parmap/internal/cpu"
	"github.com/utkarsh5026/parmap/internal/scheduler"
)

var (
	ErrExecutorClosed = errors.New("executor is shut down")
)

// ExecutorKind selects what a worker runs on.
type ExecutorKind int

const (
	// KindOSThread locks every worker to its own OS thread for its whole life, so
	// CPU-bound tasks are spread over real threads and can be pinned to cores.
	KindOSThread ExecutorKind = iota

	// KindGoroutine runs workers as ordinary goroutines multiplexed by the runtime.
	// It suits tasks that mostly wait on I/O.
	KindGoroutine
)

func (k ExecutorKind) String() string {
	switch k {
	case KindOSThread:
		return "os-thread"
	case KindGoroutine:
		return "goroutine"
	default:
		return "unknown"
	}
}

// SchedulingStrategyType represents the type of job scheduling strategy.
type SchedulingStrategyType int

const (
	// SchedulingShared uses one queue read by all workers.
	SchedulingShared SchedulingStrategyType = iota

	// SchedulingRoundRobin gives every worker its own queue and deals jobs in turn.
	SchedulingRoundRobin

	// SchedulingWorkStealing deals jobs in turn but lets idle workers steal queued jobs
	// from busy ones.
	SchedulingWorkStealing
)

func (s SchedulingStrategyType) String() string {
	return s.scheduler().String()
}

func (s SchedulingStrategyType) scheduler() scheduler.StrategyType {
	switch s {
	case SchedulingRoundRobin:
		return scheduler.RoundRobin
	case SchedulingWorkStealing:
		return scheduler.WorkStealing
	default:
		return scheduler.Shared
	}
}

// ExecutorConfig describes an executor. It is comparable and, once normalized, keys
// the reusable executors of a Registry.
type ExecutorConfig struct {
	Workers  int
	Kind     ExecutorKind
	Buffer   int
	Strategy SchedulingStrategyType
	PinCPU   bool
}

// normalize fills defaults so equivalent configs compare equal.
func (c ExecutorConfig) normalize() ExecutorConfig {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Buffer <= 0 {
		c.Buffer = c.Workers
	}
	if c.Kind != KindOSThread {
		c.PinCPU = false
	}
	return c
}

// Executor is a fixed set of workers pulling jobs from a scheduling strategy.
// It accepts jobs from any number of concurrent batches until Shutdown.
type Executor struct {
	id       uuid.UUID
	cfg      ExecutorConfig
	strategy scheduler.Strategy
	cancel   context.CancelFunc
	done     chan struct{}
	closed   atomic.Bool
	log      logrus.FieldLogger
}

// NewExecutor starts the workers described by cfg. A nil logger uses the logrus
// standard logger.
func NewExecutor(cfg ExecutorConfig, logger logrus.FieldLogger) *Executor {
	cfg = cfg.normalize()
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Executor{
		id:  uuid.New(),
		cfg: cfg,
		strategy: scheduler.New(cfg.Strategy.scheduler(), scheduler.Config{
			Workers: cfg.Workers,
			Buffer:  cfg.Buffer,
		}),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	e.log = logger.WithFields(logrus.Fields{
		"executor-id": e.id.String(),
		"workers":     cfg.Workers,
		"kind":        cfg.Kind.String(),
	})

	var g errgroup.Group
	for w := range cfg.Workers {
		g.Go(func() error {
			return e.work(ctx, w)
		})
	}

	go func() {
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			e.log.WithError(err).Warn("executor workers stopped")
		}
		close(e.done)
	}()

	e.log.Debug("executor started")
	return e
}

func (e *Executor) work(ctx context.Context, workerID int) error {
	if e.cfg.Kind == KindOSThread {
		release, err := cpu.LockWorker(workerID, e.cfg.PinCPU)
		defer release()
		if err != nil {
			e.log.WithError(err).WithField("worker", workerID).Debug("cpu pinning unavailable")
		}
	}

	return e.strategy.Worker(ctx, workerID)
}

// ID identifies the executor in logs.
func (e *Executor) ID() uuid.UUID { return e.id }

// Config returns the normalized config the executor was built with.
func (e *Executor) Config() ExecutorConfig { return e.cfg }

// Closed reports whether Shutdown has been called.
func (e *Executor) Closed() bool { return e.closed.Load() }

// submit queues job, blocking while the queues are full.
func (e *Executor) submit(ctx context.Context, job scheduler.Job) error {
	if e.closed.Load() {
		return ErrExecutorClosed
	}

	err := e.strategy.Submit(ctx, job)
	if errors.Is(err, scheduler.ErrSchedulerClosed) {
		return ErrExecutorClosed
	}
	return err
}

// Shutdown stops accepting jobs and waits for queued and running jobs to finish.
// A timeout <= 0 waits indefinitely. When the timeout is reached the workers are
// cancelled, run what is left in their queues and exit; ErrShutdownTimeout is returned.
// Calling Shutdown more than once is safe.
func (e *Executor) Shutdown(timeout time.Duration) error {
	if e.closed.CompareAndSwap(false, true) {
		e.strategy.Shutdown()
		e.log.Debug("executor shutting down")
	}

	err := waitUntil(e.done, timeout)
	e.cancel()
	return err
}
