// Package splitter
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package splitter lets many goroutines carve disjoint, exclusively owned
// runs out of one pre-allocated slice at the same time, without locks and
// without per-element allocation.
//
// A Splitter wraps a caller-owned []T. Pop, PopTwo and PopN each perform a
// single atomic add on a shared cursor and, if the requested run fits before
// the end of the slice, hand out pointers into (or a capped subslice of) the
// caller's storage. Distinct goroutines may write their claimed elements
// concurrently: no index is ever issued twice. When all claiming goroutines
// have been joined, Done reports how many slots were handed out and the
// caller regains direct use of the slice, typically truncating it:
//
//	arena := make([]Node, upperBound)
//	s := splitter.New(arena)
//	root, _, err := s.Pop()
//	... // recursive, parallel PopTwo calls
//	arena = arena[:s.Done()]
//
// A claim that does not fit fails with api.ErrCapacityExhausted and grants
// nothing. The cursor never falls back below the capacity, so the slots the
// failed claim overshot are forfeited: a PopTwo that finds exactly one slot left fails and
// that last slot is never offered again. At most width-1 slots are lost at the
// tail of the slice.
//
// Claims remain valid until Done. The caller must not touch the slice directly
// while claims are in flight, and must not call Done concurrently with any
// claim.
package splitter

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to the global core tracer.
func tracer() tracing.Trace {
	return gtrace.CoreTracer
}
