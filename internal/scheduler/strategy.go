package scheduler

import "context"

// Strategy defines the behavior for distributing jobs to workers.
type Strategy interface {
	// Submit hands a job to the strategy. It blocks while the queue is full and
	// returns ErrSchedulerClosed once Shutdown has been called.
	Submit(ctx context.Context, job Job) error

	// Worker runs the receive loop for one worker until the strategy is shut down
	// and its queue is drained, or until ctx is cancelled.
	Worker(ctx context.Context, workerID int) error

	// Shutdown stops accepting jobs. Jobs already queued are still run by workers.
	Shutdown()
}

// New creates the strategy of the given type.
func New(kind StrategyType, conf Config) Strategy {
	conf.Workers = max(conf.Workers, 1)
	conf.Buffer = max(conf.Buffer, 0)

	switch kind {
	case RoundRobin:
		return newChannelStrategy(conf)
	case WorkStealing:
		return newStealStrategy(conf)
	default:
		return newSharedStrategy(conf)
	}
}
