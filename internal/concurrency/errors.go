// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for concurrency module.

package concurrency

import "errors"

var (
	// ErrPoolClosed indicates the pool has been shut down
	ErrPoolClosed = errors.New("pool is closed")

	// ErrQueueFull indicates the task queue has no free cell
	ErrQueueFull = errors.New("task queue is full")
)
