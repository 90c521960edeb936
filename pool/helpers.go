package pool

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

var (
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")
)

// checkReplacer validates the value given to WithTimeoutReplacer against the call's
// result type R and returns it typed. A nil replacer stands for the zero value when R
// can hold nil.
//
// Panics:
//
//	If the replacer's type does not match R. The panic message names both types.
func checkReplacer[R any](cfg *mapConfig) R {
	var zero R
	if !cfg.hasReplacer || cfg.replacer == nil {
		return zero
	}

	v, ok := cfg.replacer.(R)
	if !ok {
		panic(fmt.Sprintf("WithTimeoutReplacer value has type %T, but the call produces type %s",
			cfg.replacer, typeName[R]()))
	}
	return v
}

func typeName[R any]() string {
	var zero R
	if s := fmt.Sprintf("%T", zero); s != "<nil>" {
		return s
	}
	return fmt.Sprintf("%T", (*R)(nil))[1:]
}

// panicError converts a recovered panic value into an error carrying the stack.
func panicError(r any) error {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return fmt.Errorf("worker panic: %v\nstack trace:\n%s", r, buf[:n])
}

// waitUntil blocks until either the done channel is closed or the timeout is reached.
// It is used during graceful shutdown to wait for workers to complete their jobs.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	select {
	case <-d:
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}
