package scheduler

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const (
	fastCheckCounter = 3
	maxStealAttempts = 8
	batchStealSize   = 4 // jobs taken at once from a long victim queue

	spinMisses  = 20
	yieldMisses = 30
	minIdle     = 50 * time.Microsecond
	maxIdle     = 5 * time.Millisecond
)

// deque is a worker's local queue. The owner pops from the back for locality,
// thieves take from the front.
type deque struct {
	mu   sync.Mutex
	jobs []Job
}

func (d *deque) pushBack(jobs ...Job) {
	d.mu.Lock()
	d.jobs = append(d.jobs, jobs...)
	d.mu.Unlock()
}

func (d *deque) popBack() (Job, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.jobs)
	if n == 0 {
		return nil, false
	}
	job := d.jobs[n-1]
	d.jobs[n-1] = nil
	d.jobs = d.jobs[:n-1]
	return job, true
}

// popFront removes up to n jobs from the front.
func (d *deque) popFront(n int) []Job {
	d.mu.Lock()
	defer d.mu.Unlock()

	n = min(n, len(d.jobs))
	if n == 0 {
		return nil
	}
	out := make([]Job, n)
	copy(out, d.jobs)
	clear(d.jobs[:n])
	d.jobs = d.jobs[n:]
	return out
}

func (d *deque) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.jobs)
}

// stealStrategy deals jobs round-robin onto per-worker deques. A worker runs its own
// jobs newest first and, once empty, steals the oldest jobs of the others.
//
// slots bounds the jobs queued across all deques: Submit takes a slot and the worker
// that dequeues a job gives it back.
type stealStrategy struct {
	queues     []*deque
	slots      chan struct{}
	next, seed atomic.Uint64
	gate       *gate
}

func newStealStrategy(conf Config) *stealStrategy {
	s := &stealStrategy{
		queues: make([]*deque, conf.Workers),
		slots:  make(chan struct{}, conf.Workers*max(conf.Buffer, 1)),
		gate:   newGate(),
	}
	for i := range s.queues {
		s.queues[i] = new(deque)
	}
	return s
}

func (s *stealStrategy) Submit(ctx context.Context, job Job) error {
	return s.gate.admit(ctx, s.slots, func() {
		id := (s.next.Add(1) - 1) % uint64(len(s.queues))
		s.queues[id].pushBack(job)
	})
}

func (s *stealStrategy) Shutdown() {
	s.gate.close()
}

// Worker loops over local work, then steals, then idles. After Shutdown it returns
// once every deque is empty; on cancellation it runs whatever it can still find first.
func (s *stealStrategy) Worker(ctx context.Context, workerID int) error {
	id := workerID % len(s.queues)
	var misses int

	for {
		found := false
		for range fastCheckCounter {
			job, ok := s.take(id)
			if !ok {
				break
			}
			job()
			found = true
		}

		if ctx.Err() != nil {
			s.drain(id)
			return ctx.Err()
		}
		if found {
			misses = 0
			continue
		}
		if s.gate.isClosed() && len(s.slots) == 0 {
			return nil
		}

		misses++
		idle(misses)
	}
}

// take finds the next job for worker id and releases its slot.
func (s *stealStrategy) take(id int) (Job, bool) {
	job, ok := s.queues[id].popBack()
	if !ok {
		job, ok = s.steal(id)
	}
	if ok {
		<-s.slots
	}
	return job, ok
}

// steal scans up to maxStealAttempts victims from a rotating start. From a long queue
// it takes a batch and keeps the rest locally.
func (s *stealStrategy) steal(thief int) (Job, bool) {
	n := len(s.queues)
	if n <= 1 {
		return nil, false
	}

	start := int(s.seed.Add(1) % uint64(n))
	for i := range min(n, maxStealAttempts+1) {
		victim := (start + i) % n
		if victim == thief {
			continue
		}

		q := s.queues[victim]
		count := 1
		if l := q.len(); l > batchStealSize*2 {
			count = min(l/2, batchStealSize)
		}

		stolen := q.popFront(count)
		if len(stolen) == 0 {
			continue
		}
		if len(stolen) > 1 {
			s.queues[thief].pushBack(stolen[1:]...)
		}
		return stolen[0], true
	}
	return nil, false
}

func (s *stealStrategy) drain(id int) {
	for {
		job, ok := s.take(id)
		if !ok {
			return
		}
		job()
	}
}

// idle spins, then yields, then sleeps with exponential growth up to maxIdle.
func idle(misses int) {
	switch {
	case misses <= spinMisses:
	case misses <= yieldMisses:
		runtime.Gosched()
	default:
		d := minIdle
		for i := yieldMisses; i < misses && d < maxIdle; i++ {
			d *= 2
		}
		time.Sleep(min(d, maxIdle))
	}
}
