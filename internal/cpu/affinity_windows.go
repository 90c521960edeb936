//go:build windows

package cpu

import (
	"syscall"
)

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// pinToCore restricts the current OS thread to core. Must be called after
// runtime.LockOSThread. Bit N of the mask selects CPU N.
func pinToCore(core int) (func(), error) {
	handle, _, _ := getCurrentThread.Call()

	prev, _, err := setThreadAffinityMask.Call(handle, uintptr(1)<<uint(core))
	if prev == 0 {
		return nil, err
	}

	return func() { _, _, _ = setThreadAffinityMask.Call(handle, prev) }, nil
}
