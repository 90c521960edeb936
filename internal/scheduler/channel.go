package scheduler

import (
	"context"
	"sync/atomic"
)

// channelStrategy distributes jobs to a set of worker-specific channels in a
// round-robin fashion. Each worker goroutine reads only from its own channel.
type channelStrategy struct {
	taskChans []chan Job   // Per-worker job channels.
	counter   atomic.Int64 // Atomic counter for round-robin channel selection.
	gate      *gate
}

// newChannelStrategy creates one channel per configured worker, each with conf.Buffer capacity.
func newChannelStrategy(conf Config) *channelStrategy {
	c := &channelStrategy{
		taskChans: make([]chan Job, conf.Workers),
		gate:      newGate(),
	}

	for i := range conf.Workers {
		c.taskChans[i] = make(chan Job, conf.Buffer)
	}

	return c
}

// Submit sends the job to the next worker channel.
func (s *channelStrategy) Submit(ctx context.Context, job Job) error {
	return s.gate.send(ctx, s.taskChans[s.next()], job)
}

// Shutdown closes every worker channel; workers drain what is queued and exit.
func (s *channelStrategy) Shutdown() {
	s.gate.close(s.taskChans...)
}

// Worker runs the event loop for workerID over its dedicated channel.
func (s *channelStrategy) Worker(ctx context.Context, workerID int) error {
	return run(ctx, s.taskChans[workerID%len(s.taskChans)])
}

// next returns the next channel index using an atomic counter.
func (s *channelStrategy) next() int64 {
	return (s.counter.Add(1) - 1) % int64(len(s.taskChans))
}
