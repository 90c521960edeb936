//go:build linux

package cpu

import (
	"golang.org/x/sys/unix"
)

// pinToCore restricts the current OS thread to core. Must be called after
// runtime.LockOSThread.
func pinToCore(core int) (func(), error) {
	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return nil, err
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(core)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return nil, err
	}

	return func() { _ = unix.SchedSetaffinity(0, &prev) }, nil
}
