// File: internal/concurrency/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

const defaultQueueSize = 4096

// Option customizes pool initialization.
type Option func(*poolConfig)

type poolConfig struct {
	workers   int
	queueSize int
	pin       bool
}

// WithWorkers sets the number of worker goroutines. Values <= 0 select
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *poolConfig) {
		c.workers = n
	}
}

// WithQueueSize sets the capacity of the shared task queue.
func WithQueueSize(n int) Option {
	return func(c *poolConfig) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithCPUPinning binds worker i to CPU i modulo the CPU count.
func WithCPUPinning(on bool) Option {
	return func(c *poolConfig) {
		c.pin = on
	}
}
