// Package cpu binds pool workers to dedicated OS threads and, where the platform
// allows it, to individual cores.
package cpu

import "runtime"

// Count returns the number of logical CPUs usable by the process.
func Count() int {
	return runtime.NumCPU()
}

// LockWorker wires the calling goroutine to its own OS thread. With pin set the
// thread is also restricted to core workerID mod Count(). The returned release
// restores the previous affinity and unlocks the thread; it must run on the same
// goroutine. Pinning errors are reported but the thread stays locked.
func LockWorker(workerID int, pin bool) (release func(), err error) {
	runtime.LockOSThread()
	if !pin {
		return runtime.UnlockOSThread, nil
	}

	restore, err := pinToCore(coreFor(workerID))
	if err != nil {
		return runtime.UnlockOSThread, err
	}

	return func() {
		restore()
		runtime.UnlockOSThread()
	}, nil
}

func coreFor(workerID int) int {
	n := Count()
	id := workerID % n
	if id < 0 {
		id += n
	}
	return id
}
