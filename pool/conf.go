package pool

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/parmap/internal/algorithms"
)

// BackoffType selects the delay curve between retry attempts.
type BackoffType = algorithms.BackoffType

const (
	BackoffExponential = algorithms.BackoffExponential
	BackoffJittered    = algorithms.BackoffJittered
	BackoffFixed       = algorithms.BackoffFixed
)

// Option is a functional option for configuring a mapping call.
type Option func(*mapConfig)

type mapConfig struct {
	exec ExecutorConfig

	// Executor lifecycle. With none of these set the call's default applies.
	registry *Registry
	executor *Executor
	scoped   bool

	timeout     time.Duration
	replacer    any
	hasReplacer bool

	progress        bool
	observer        Observer
	completionOrder bool
	continueOnError bool

	maxAttempts   int
	initialDelay  time.Duration
	backoffType   BackoffType
	backoffMax    time.Duration
	backoffJitter float64
	rateLimiter   *rate.Limiter

	onWarning func(TimeoutWarning)
	hooks     []func(TaskEvent)
	logger    logrus.FieldLogger
}

// WithWorkerCount sets the number of concurrent workers.
// If not specified, defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(cfg *mapConfig) {
		if count > 0 {
			cfg.exec.Workers = count
		}
	}
}

// WithTaskBuffer sets the capacity of the executor's job queues.
// If not specified, defaults to the number of workers.
func WithTaskBuffer(size int) Option {
	return func(cfg *mapConfig) {
		if size >= 0 {
			cfg.exec.Buffer = size
		}
	}
}

// WithExecutorKind chooses between OS-thread workers (default) and plain goroutines.
func WithExecutorKind(kind ExecutorKind) Option {
	return func(cfg *mapConfig) {
		cfg.exec.Kind = kind
	}
}

// WithCPUPinning pins each OS-thread worker to a core. Ignored for goroutine workers.
func WithCPUPinning(enabled bool) Option {
	return func(cfg *mapConfig) {
		cfg.exec.PinCPU = enabled
	}
}

// WithSchedulingStrategy sets how jobs are spread across workers.
func WithSchedulingStrategy(strategy SchedulingStrategyType) Option {
	return func(cfg *mapConfig) {
		cfg.exec.Strategy = strategy
	}
}

// WithRegistry runs the call on the reusable executor that r keeps for the call's
// executor config.
func WithRegistry(r *Registry) Option {
	return func(cfg *mapConfig) {
		cfg.registry = r
		cfg.executor = nil
		cfg.scoped = false
	}
}

// WithScopedExecutor runs the call on a fresh executor that is shut down before the
// call returns.
func WithScopedExecutor() Option {
	return func(cfg *mapConfig) {
		cfg.scoped = true
		cfg.registry = nil
		cfg.executor = nil
	}
}

// WithExecutor runs the call on an executor owned by the caller. Worker options are ignored.
func WithExecutor(e *Executor) Option {
	return func(cfg *mapConfig) {
		cfg.executor = e
		cfg.registry = nil
		cfg.scoped = false
	}
}

// WithTimeout bounds each task's run time, measured from the moment the task starts.
// A value <= 0 disables the watchdog.
func WithTimeout(d time.Duration) Option {
	return func(cfg *mapConfig) {
		cfg.timeout = d
	}
}

// WithTimeoutReplacer sets the value reported for tasks that time out. It must have the
// call's result type; a mismatch panics when the call starts.
// If not specified, the zero value of the result type is used.
func WithTimeoutReplacer(v any) Option {
	return func(cfg *mapConfig) {
		cfg.replacer = v
		cfg.hasReplacer = true
	}
}

// WithProgress renders a progress bar on stderr while the batch runs.
func WithProgress(enabled bool) Option {
	return func(cfg *mapConfig) {
		cfg.progress = enabled
	}
}

// WithObserver reports completions to o. It takes precedence over WithProgress.
func WithObserver(o Observer) Option {
	return func(cfg *mapConfig) {
		cfg.observer = o
	}
}

// WithCompletionOrder returns results in the order tasks finished instead of
// submission order.
func WithCompletionOrder() Option {
	return func(cfg *mapConfig) {
		cfg.completionOrder = true
	}
}

// WithContinueOnError keeps running the batch after a task fails. The call returns every
// value it could compute together with all failures joined.
func WithContinueOnError() Option {
	return func(cfg *mapConfig) {
		cfg.continueOnError = true
	}
}

// WithRetryPolicy sets a retry policy for task processing.
// maxAttempts specifies the maximum number of attempts for each task.
// initialDelay specifies the delay before the first retry; later retries follow the
// configured backoff (exponential unless WithBackoff says otherwise).
// Timeouts are never retried: the deadline covers every attempt of a task.
func WithRetryPolicy(maxAttempts int, initialDelay time.Duration) Option {
	return func(cfg *mapConfig) {
		if maxAttempts > 0 {
			cfg.maxAttempts = maxAttempts
		}

		if initialDelay > 0 {
			cfg.initialDelay = initialDelay
		}
	}
}

// WithBackoff changes the retry delay curve. maxDelay <= 0 leaves delays uncapped.
func WithBackoff(kind BackoffType, maxDelay time.Duration, jitterFactor float64) Option {
	return func(cfg *mapConfig) {
		cfg.backoffType = kind
		cfg.backoffMax = maxDelay
		cfg.backoffJitter = jitterFactor
	}
}

// WithRateLimit sets a rate limiter for controlling task throughput.
// tasksPerSecond specifies the maximum number of tasks to start per second.
// burst specifies the maximum number of tasks that can start in a burst.
// If not specified, no rate limiting is applied.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *mapConfig) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithWarningHandler receives one TimeoutWarning per timed-out task. The default logs
// a warning through the call's logger.
func WithWarningHandler(fn func(TimeoutWarning)) Option {
	return func(cfg *mapConfig) {
		cfg.onWarning = fn
	}
}

// WithTaskHook adds a function called once per finished task. Hooks run on worker
// goroutines and must be safe for concurrent use.
func WithTaskHook(fn func(TaskEvent)) Option {
	return func(cfg *mapConfig) {
		if fn != nil {
			cfg.hooks = append(cfg.hooks, fn)
		}
	}
}

// WithLogger sets the logger used for timeout warnings and executor lifecycle lines.
func WithLogger(l logrus.FieldLogger) Option {
	return func(cfg *mapConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// runConfig is a mapConfig resolved against a result type.
type runConfig[R any] struct {
	*mapConfig
	replacer R
	backoff  algorithms.Backoff
}

func newMapConfig(opts ...Option) *mapConfig {
	cfg := &mapConfig{
		maxAttempts: 1,
		logger:      logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// newRunConfig applies opts and checks them against R. reusable selects the default
// executor lifecycle when no option chose one.
func newRunConfig[R any](reusable bool, opts ...Option) *runConfig[R] {
	cfg := newMapConfig(opts...)
	if !reusable && cfg.registry == nil && cfg.executor == nil {
		cfg.scoped = true
	}

	rc := &runConfig[R]{mapConfig: cfg, replacer: checkReplacer[R](cfg)}
	if cfg.maxAttempts > 1 && cfg.initialDelay > 0 {
		rc.backoff = algorithms.NewBackoff(cfg.backoffType, cfg.initialDelay, cfg.backoffMax, cfg.backoffJitter)
	}
	if cfg.onWarning == nil {
		log := cfg.logger
		cfg.onWarning = func(w TimeoutWarning) {
			log.WithField("timeout", w.Timeout).Warn(w.String())
		}
	}
	return rc
}
