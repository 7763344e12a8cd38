// File: splitter/splitter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free partitioning of one fixed slice among concurrent claimers.

package splitter

import (
	"fmt"
	"sync/atomic"

	"github.com/momentics/syncsplit/api"
	"golang.org/x/sys/cpu"
)

// sealed marks a finalized cursor. The claimed count is kept in the low bits.
const sealed uint64 = 1 << 63

// MaxCapacity is the largest slice New accepts. It leaves the cursor room for
// the transient overshoot of many concurrent failing claims below sealed.
const MaxCapacity uint64 = 1 << 48

// Splitter hands out disjoint runs of a caller-owned slice to concurrent
// goroutines. The zero value is not usable; create one with New.
//
// The single shared word is cursor, the number of slots requested so far.
// A failed claim may push it past the capacity; the failing claimer then
// pulls it back to exactly the capacity. It sits on its own cache line.
type Splitter[T any] struct {
	_        cpu.CacheLinePad
	cursor   atomic.Uint64
	_        cpu.CacheLinePad
	buf      []T
	capacity uint64
}

var _ api.Allocator[int] = (*Splitter[int])(nil)

// New wraps buf. The contents of buf are left untouched; its length becomes
// the capacity. buf must not be accessed directly until Done has returned.
// New panics if len(buf) exceeds MaxCapacity.
func New[T any](buf []T) *Splitter[T] {
	if uint64(len(buf)) > MaxCapacity {
		panic(fmt.Sprintf("splitter: buffer of %d elements exceeds MaxCapacity", len(buf)))
	}
	return &Splitter[T]{
		buf:      buf,
		capacity: uint64(len(buf)),
	}
}

// Cap returns the number of slots the Splitter was created with.
func (s *Splitter[T]) Cap() int {
	return int(s.capacity)
}

// Claimed returns a snapshot of the number of slots consumed so far, clamped
// to the capacity. Slots forfeited by failed claims are included. After Done
// it returns the finalized count.
func (s *Splitter[T]) Claimed() int {
	c := s.cursor.Load()
	if c >= sealed {
		c -= sealed
	}
	return int(min(c, s.capacity))
}

// Pop claims the next free slot. It returns a pointer into the wrapped slice
// and the slot's index. The pointer is owned exclusively by the caller.
func (s *Splitter[T]) Pop() (*T, int, error) {
	i, err := s.claim(1)
	if err != nil {
		return nil, 0, err
	}
	return &s.buf[i], int(i), nil
}

// PopTwo claims two adjacent slots and returns them with the index of the
// first. It fails if fewer than two slots remain; when exactly one was left,
// that slot is forfeited and no later claim will return it.
func (s *Splitter[T]) PopTwo() (*T, *T, int, error) {
	i, err := s.claim(2)
	if err != nil {
		return nil, nil, 0, err
	}
	return &s.buf[i], &s.buf[i+1], int(i), nil
}

// PopN claims n adjacent slots and returns them as a subslice together with
// the index of its first element. The subslice's capacity equals n, so
// appending to it reallocates instead of spilling into a neighbour's claim.
//
// A claim that does not fit grants nothing and forfeits the remaining tail.
// PopN(0) succeeds with an empty slice until the Splitter is finalized.
func (s *Splitter[T]) PopN(n int) ([]T, int, error) {
	if n < 0 {
		return nil, 0, api.WrapError(api.ErrCodeInvalidArgument,
			"splitter: negative claim width", api.ErrInvalidArgument).
			WithContext("width", n)
	}
	i, err := s.claim(uint64(n))
	if err != nil {
		return nil, 0, err
	}
	if n == 0 {
		i = min(i, s.capacity)
	}
	return s.buf[i : i+uint64(n) : i+uint64(n)], int(i), nil
}

// Done finalizes the Splitter and returns the number of slots consumed,
// clamped to the capacity. When no claim has failed this is exactly the
// number of slots handed out; after a failure it includes the forfeited
// tail. Slots at or past the returned count were never handed out.
//
// Done must be called once, after every goroutine that may claim has
// finished. Any later claim fails with api.ErrSplitterDone. Calling Done
// again returns the same count.
func (s *Splitter[T]) Done() int {
	for {
		c := s.cursor.Load()
		if c >= sealed {
			return int(c - sealed)
		}
		n := min(c, s.capacity)
		if s.cursor.CompareAndSwap(c, sealed|n) {
			tracer().Debugf("splitter: finalized, %d of %d slots consumed", n, s.capacity)
			return int(n)
		}
	}
}

// claim advances the cursor by n in one atomic step and reports whether the
// run [start, start+n) fits. Widths above the capacity can never fit; their
// increment is clamped to capacity+1 to keep the cursor far from wrapping.
func (s *Splitter[T]) claim(n uint64) (uint64, error) {
	delta := min(n, s.capacity+1)
	start := s.cursor.Add(delta) - delta
	if start >= sealed {
		if delta > 0 {
			// keep the finalized count intact
			s.cursor.Add(^(delta - 1))
		}
		return 0, api.WrapError(api.ErrCodeFinalized,
			"splitter: claim after finalization", api.ErrSplitterDone).
			WithContext("width", n)
	}
	if n == 0 || (start <= s.capacity && n <= s.capacity-start) {
		return start, nil
	}
	s.settle()
	tracer().Debugf("splitter: claim of %d at %d exceeds capacity %d", n, start, s.capacity)
	return 0, api.WrapError(api.ErrCodeCapacityExhausted,
		"splitter: claim rejected", api.ErrCapacityExhausted).
		WithContext("start", start).
		WithContext("width", n).
		WithContext("capacity", s.capacity)
}

// settle pulls an overshooting cursor back to the capacity. Every claim
// starting at or past the capacity fails, so nothing is issued twice, and the
// cursor stays far below sealed however many claims fail.
func (s *Splitter[T]) settle() {
	for {
		c := s.cursor.Load()
		if c >= sealed || c <= s.capacity {
			return
		}
		if s.cursor.CompareAndSwap(c, s.capacity) {
			return
		}
	}
}
