package scheduler

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrSchedulerClosed error = errors.New("scheduler is closed")
)

// gate serializes submissions against shutdown so a job is never sent on a closed queue.
// Senders hold the read lock while blocked on a full queue; closing quit first releases them.
type gate struct {
	mu     sync.RWMutex
	closed bool
	quit   chan struct{}
	once   sync.Once
}

func newGate() *gate {
	return &gate{quit: make(chan struct{})}
}

// send delivers job on ch unless the gate is closed or ctx is done.
func (g *gate) send(ctx context.Context, ch chan<- Job, job Job) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.closed {
		return ErrSchedulerClosed
	}

	select {
	case ch <- job:
		return nil
	case <-g.quit:
		return ErrSchedulerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// admit takes a slot from slots and calls enqueue under the read lock, so a closed
// gate never sees a job enqueued after it.
func (g *gate) admit(ctx context.Context, slots chan<- struct{}, enqueue func()) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.closed {
		return ErrSchedulerClosed
	}

	select {
	case slots <- struct{}{}:
		enqueue()
		return nil
	case <-g.quit:
		return ErrSchedulerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) isClosed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.closed
}

// close marks the gate closed and closes every queue exactly once.
func (g *gate) close(queues ...chan Job) {
	g.once.Do(func() {
		close(g.quit)

		g.mu.Lock()
		defer g.mu.Unlock()

		g.closed = true
		for _, q := range queues {
			close(q)
		}
	})
}

// run executes jobs from q until it is closed. On cancellation the jobs still queued
// are run before returning so no submitted job is lost; jobs observe their own
// contexts and finish quickly once those are done.
func run(ctx context.Context, q <-chan Job) error {
	for {
		select {
		case <-ctx.Done():
			drain(q)
			return ctx.Err()
		case job, ok := <-q:
			if !ok {
				return nil
			}
			job()
		}
	}
}

func drain(q <-chan Job) {
	for {
		select {
		case job, ok := <-q:
			if !ok {
				return
			}
			job()
		default:
			return
		}
	}
}
