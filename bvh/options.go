// File: bvh/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Functional options for Build.

package bvh

const (
	defaultMaxLeafSize       = 4
	defaultParallelThreshold = 1024
)

// Option customizes Build.
type Option func(*config)

type config struct {
	maxLeafSize       int
	parallelThreshold int
}

// WithMaxLeafSize sets the largest number of primitives kept in one leaf.
func WithMaxLeafSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxLeafSize = n
		}
	}
}

// WithParallelThreshold sets the smallest primitive count for which the two
// subtrees of a node are built through the Joiner rather than serially.
func WithParallelThreshold(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.parallelThreshold = n
		}
	}
}
