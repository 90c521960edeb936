//go:build !linux && !windows

package cpu

import "errors"

// ErrPinningUnsupported is returned by LockWorker when the platform cannot pin threads.
// macOS only exposes affinity hints, so the thread is locked but left unpinned.
var ErrPinningUnsupported = errors.New("cpu: thread pinning not supported on this platform")

func pinToCore(int) (func(), error) {
	return nil, ErrPinningUnsupported
}
