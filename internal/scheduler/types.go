package scheduler

// Job is a unit of work handed to a worker. Jobs carry their own result plumbing,
// so the scheduler never inspects what they produce.
type Job func()

// StrategyType selects how jobs are distributed across workers.
type StrategyType int

const (
	// Shared puts every job on a single queue that all workers read from.
	Shared StrategyType = iota

	// RoundRobin gives each worker its own queue and assigns jobs in turn.
	RoundRobin

	// WorkStealing gives each worker its own deque and lets idle workers steal.
	WorkStealing
)

// String returns the strategy name.
func (s StrategyType) String() string {
	switch s {
	case Shared:
		return "shared"
	case RoundRobin:
		return "round-robin"
	case WorkStealing:
		return "work-stealing"
	default:
		return "unknown"
	}
}

// Config sizes a strategy.
type Config struct {
	// Number of worker goroutines that will call Worker.
	Workers int

	// Capacity of each job queue.
	Buffer int
}
