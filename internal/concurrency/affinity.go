// File: internal/concurrency/affinity.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cross-platform CPU affinity for pool workers.

package concurrency

import (
	"runtime"
)

// PinCurrentThread locks the calling goroutine to its OS thread and binds
// that thread to cpuID (taken modulo the number of CPUs). On platforms
// without affinity support the goroutine is only locked to its thread.
func PinCurrentThread(cpuID int) error {
	runtime.LockOSThread()
	if cpuID < 0 {
		cpuID = 0
	}
	return platformPinCurrentThread(cpuID % NumCPUs())
}

// UnpinCurrentThread clears the affinity set by PinCurrentThread and
// releases the OS thread.
func UnpinCurrentThread() error {
	defer runtime.UnlockOSThread()
	return platformUnpinCurrentThread()
}

// NumCPUs returns the number of logical CPUs.
func NumCPUs() int {
	return runtime.NumCPU()
}
