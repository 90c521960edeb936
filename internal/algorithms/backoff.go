package algorithms

import (
	"math/rand"
	"sync"
	"time"
)

// maxShift caps the exponent so the shifted factor cannot overflow int64.
const maxShift = 62

// BackoffType selects the delay curve used between retry attempts.
type BackoffType int

const (
	// BackoffExponential doubles the delay on every attempt (default).
	BackoffExponential BackoffType = iota
	// BackoffJittered is exponential with a random ±factor spread.
	BackoffJittered
	// BackoffFixed waits the same delay before every retry.
	BackoffFixed
)

// Backoff computes the wait before a retry. attempt is 0 for the first retry.
// Implementations are stateless per task and safe for concurrent use.
type Backoff interface {
	Delay(attempt int) time.Duration
}

// NewBackoff builds the backoff of the given type. maxDelay <= 0 means no cap.
func NewBackoff(kind BackoffType, initialDelay, maxDelay time.Duration, jitterFactor float64) Backoff {
	if maxDelay <= 0 {
		maxDelay = time.Duration(1<<63 - 1)
	}

	switch kind {
	case BackoffFixed:
		return fixedBackoff{delay: min(initialDelay, maxDelay)}
	case BackoffJittered:
		return &jitteredBackoff{
			base:   exponentialBackoff{initialDelay: initialDelay, maxDelay: maxDelay},
			factor: clamp(jitterFactor, 0, 1),
			rng:    rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter does not need crypto rand
		}
	default:
		return exponentialBackoff{initialDelay: initialDelay, maxDelay: maxDelay}
	}
}

type fixedBackoff struct {
	delay time.Duration
}

func (f fixedBackoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}
	return f.delay
}

// exponentialBackoff yields initialDelay * 2^attempt, capped at maxDelay.
type exponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
}

func (e exponentialBackoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}
	if attempt > maxShift {
		return e.maxDelay
	}

	delay := time.Duration(int64(1)<<uint(attempt)) * e.initialDelay
	if delay > e.maxDelay || delay < 0 || (e.initialDelay > 0 && delay/e.initialDelay != time.Duration(int64(1)<<uint(attempt))) {
		return e.maxDelay
	}
	return delay
}

// jitteredBackoff spreads the exponential delay by ±factor so tasks that failed together
// do not retry together.
type jitteredBackoff struct {
	base   exponentialBackoff
	factor float64

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rng *rand.Rand
}

func (j *jitteredBackoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}

	j.mu.Lock()
	spread := 1 + (j.rng.Float64()*2-1)*j.factor
	j.mu.Unlock()

	// Clamp before converting: a saturated delay times a spread above 1 does not fit
	// in a Duration.
	d := clamp(float64(j.base.Delay(attempt))*spread, 0, float64(j.base.maxDelay))
	if d >= float64(j.base.maxDelay) {
		return j.base.maxDelay
	}
	return time.Duration(d)
}

func clamp[T int | int64 | float64 | time.Duration](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
