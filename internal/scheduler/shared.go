package scheduler

import "context"

// sharedStrategy keeps a single queue read by every worker, so an idle worker always
// picks up the oldest waiting job.
type sharedStrategy struct {
	jobs chan Job
	gate *gate
}

func newSharedStrategy(conf Config) *sharedStrategy {
	return &sharedStrategy{
		jobs: make(chan Job, max(conf.Buffer, conf.Workers)),
		gate: newGate(),
	}
}

func (s *sharedStrategy) Submit(ctx context.Context, job Job) error {
	return s.gate.send(ctx, s.jobs, job)
}

func (s *sharedStrategy) Shutdown() {
	s.gate.close(s.jobs)
}

func (s *sharedStrategy) Worker(ctx context.Context, _ int) error {
	return run(ctx, s.jobs)
}
