package pool

// OutcomeKind classifies how a guarded task ended.
type OutcomeKind int

const (
	// Succeeded means the task returned a value within its deadline.
	Succeeded OutcomeKind = iota
	// TimedOut means the deadline passed first. The task carries no value.
	TimedOut
	// Failed means the task returned an error or panicked.
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one guarded task: exactly one of a value, a timeout or an error.
type Outcome[R any] struct {
	kind  OutcomeKind
	value R
	err   error
}

func success[R any](v R) Outcome[R] {
	return Outcome[R]{kind: Succeeded, value: v}
}

func timedOut[R any]() Outcome[R] {
	return Outcome[R]{kind: TimedOut}
}

func failure[R any](err error) Outcome[R] {
	return Outcome[R]{kind: Failed, err: err}
}

func (o Outcome[R]) Kind() OutcomeKind { return o.kind }

// Value is the task result. It is the zero value unless Kind is Succeeded.
func (o Outcome[R]) Value() R { return o.value }

func (o Outcome[R]) Err() error { return o.err }

// Resolve maps the outcome to what a caller sees: the value, the replacer for a
// timeout, or the error.
func (o Outcome[R]) Resolve(replacer R) (R, error) {
	switch o.kind {
	case Succeeded:
		return o.value, nil
	case TimedOut:
		return replacer, nil
	default:
		var zero R
		return zero, o.err
	}
}
