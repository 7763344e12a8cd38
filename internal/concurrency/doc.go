// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concurrency substrate for driving splitters from many goroutines: a bounded
// MPMC lock-free queue, a fork-join worker pool whose Join helps with queued
// work instead of blocking, and optional CPU pinning of the workers.
//
// The splitter itself never schedules anything; this package is what the
// tree builders and the demo hand in as their api.Joiner.
package concurrency

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to the global core tracer.
func tracer() tracing.Trace {
	return gtrace.CoreTracer
}
