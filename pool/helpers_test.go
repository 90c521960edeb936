package pool

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// strategyConfig defines a test configuration for an executor layout
type strategyConfig struct {
	name string
	opts []Option
}

// getAllStrategies returns every scheduling strategy on every executor kind
func getAllStrategies(workerCount int) []strategyConfig {
	return []strategyConfig{
		{
			name: "SharedOSThread",
			opts: []Option{
				WithWorkerCount(workerCount),
				WithSchedulingStrategy(SchedulingShared),
			},
		},
		{
			name: "RoundRobinOSThread",
			opts: []Option{
				WithWorkerCount(workerCount),
				WithSchedulingStrategy(SchedulingRoundRobin),
			},
		},
		{
			name: "SharedGoroutine",
			opts: []Option{
				WithWorkerCount(workerCount),
				WithExecutorKind(KindGoroutine),
			},
		},
		{
			name: "RoundRobinGoroutine",
			opts: []Option{
				WithWorkerCount(workerCount),
				WithExecutorKind(KindGoroutine),
				WithSchedulingStrategy(SchedulingRoundRobin),
			},
		},
		{
			name: "WorkStealingGoroutine",
			opts: []Option{
				WithWorkerCount(workerCount),
				WithExecutorKind(KindGoroutine),
				WithSchedulingStrategy(SchedulingWorkStealing),
			},
		},
	}
}

func runStrategyTest(t *testing.T, testFunc func(t *testing.T, s strategyConfig), workerCount int, additionalOpts ...Option) {
	for _, strategy := range getAllStrategies(workerCount) {
		strategy.opts = append(strategy.opts, additionalOpts...)
		t.Run(strategy.name, func(t *testing.T) {
			testFunc(t, strategy)
		})
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestRegistry returns a registry that is shut down when the test ends.
func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(quietLogger())
	t.Cleanup(func() {
		_ = r.Shutdown(time.Second)
	})
	return r
}

// newTestExecutor returns an executor that is shut down when the test ends.
func newTestExecutor(t *testing.T, cfg ExecutorConfig) *Executor {
	t.Helper()
	e := NewExecutor(cfg, quietLogger())
	t.Cleanup(func() {
		_ = e.Shutdown(time.Second)
	})
	return e
}
