// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fork-join contract for the parallel recursion that drives a Splitter.

package api

// Joiner runs two closures, potentially in parallel, and returns only after
// both have finished. Implementations decide how the work is spread.
type Joiner interface {
	Join(a, b func())
}

// JoinFunc adapts an ordinary function to the Joiner interface.
type JoinFunc func(a, b func())

// Join calls f(a, b).
func (f JoinFunc) Join(a, b func()) { f(a, b) }

// Inline is a Joiner running both halves sequentially on the caller.
var Inline Joiner = JoinFunc(func(a, b func()) {
	a()
	b()
})

// Executor abstracts parallel task dispatch.
type Executor interface {
	// Submit schedules task for execution.
	Submit(task func()) error

	// NumWorkers returns current number of active worker routines.
	NumWorkers() int
}
