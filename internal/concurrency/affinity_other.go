// File: internal/concurrency/affinity_other.go
//go:build !linux

//
// Fallback for platforms without thread affinity support.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

// platformPinCurrentThread is a no-op; the thread stays locked only.
func platformPinCurrentThread(cpuID int) error {
	return nil
}

// platformUnpinCurrentThread is a no-op.
func platformUnpinCurrentThread() error {
	return nil
}
