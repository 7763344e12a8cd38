// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Claim surface shared by splitters and the tree builders using them.

package api

// Allocator hands out disjoint, exclusively owned slots of one fixed buffer.
// All methods are safe for concurrent use. A failed claim never returns
// partial results.
type Allocator[T any] interface {
	// Pop claims one slot and returns it with its index.
	Pop() (*T, int, error)

	// PopTwo claims two adjacent slots and returns them with the first index.
	PopTwo() (*T, *T, int, error)

	// PopN claims n adjacent slots and returns them with the first index.
	PopN(n int) ([]T, int, error)

	// Cap returns the total number of slots.
	Cap() int
}
