// Package bintree
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package bintree builds complete binary trees in parallel into one
// pre-allocated slice, claiming sibling pairs from a splitter.
//
// Nodes are stored flat: a node records the index of its first child, and the
// second child always follows the first. The root sits at index 0, so a
// FirstChild of 0 marks a leaf and the zero Node is a valid leaf.
package bintree

import (
	"errors"
	"fmt"
	"math/bits"
	"sync/atomic"

	"github.com/eapache/queue"
	"github.com/momentics/syncsplit/api"
	"github.com/momentics/syncsplit/splitter"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return gtrace.CoreTracer
}

// ErrMalformed is returned by Verify for a slice that is not a complete,
// correctly linked binary tree.
var ErrMalformed = errors.New("bintree: malformed tree")

// MaxHeight is the largest height whose node count fits in an int.
const MaxHeight = bits.UintSize - 2

// serialHeight is the subtree height at and below which children are grown
// on the calling goroutine.
const serialHeight = 3

// Node is one tree node. Height stands in for payload data.
type Node struct {
	Height     uint32
	FirstChild int
}

// IsLeaf reports whether n has no children.
func (n Node) IsLeaf() bool {
	return n.FirstChild == 0
}

// NodeCount returns the number of nodes of a complete binary tree of the
// given height. It panics if height exceeds MaxHeight.
func NodeCount(height uint32) int {
	if height > MaxHeight {
		panic(fmt.Sprintf("bintree: height %d exceeds %d", height, MaxHeight))
	}
	return int(uint(1)<<(height+1) - 1)
}

func checkHeight(height uint32) error {
	if height > MaxHeight {
		return api.WrapError(api.ErrCodeInvalidArgument, "bintree: height too large", api.ErrInvalidArgument).
			WithContext("height", height).
			WithContext("max", MaxHeight)
	}
	return nil
}

// Build grows a complete binary tree of the given height into arena and
// returns the number of slots used; arena[:n] then holds the tree with its
// root at index 0. Sibling subtrees are grown through j.
//
// If arena is too small, Build stops claiming, returns an error wrapping
// api.ErrCapacityExhausted and the tree is incomplete. Heights above
// MaxHeight are rejected with api.ErrInvalidArgument.
func Build(arena []Node, height uint32, j api.Joiner) (int, error) {
	if err := checkHeight(height); err != nil {
		return 0, err
	}
	s := splitter.New(arena)
	root, _, err := s.Pop()
	if err != nil {
		s.Done()
		return 0, fmt.Errorf("bintree: no room for the root: %w", err)
	}
	b := &builder{s: s, j: j}
	b.grow(root, height)
	n := s.Done()
	if errp := b.failed.Load(); errp != nil {
		tracer().Errorf("bintree: height %d does not fit %d slots", height, len(arena))
		return n, fmt.Errorf("bintree: arena of %d too small for height %d: %w", len(arena), height, *errp)
	}
	tracer().Infof("bintree: built height %d with %d nodes", height, n)
	return n, nil
}

type builder struct {
	s      *splitter.Splitter[Node]
	j      api.Joiner
	failed atomic.Pointer[error]
}

func (b *builder) grow(parent *Node, height uint32) {
	if height == 0 || b.failed.Load() != nil {
		return
	}
	left, right, first, err := b.s.PopTwo()
	if err != nil {
		b.failed.CompareAndSwap(nil, &err)
		return
	}
	*parent = Node{Height: height, FirstChild: first}
	if height <= serialHeight {
		b.grow(left, height-1)
		b.grow(right, height-1)
		return
	}
	b.j.Join(func() { b.grow(left, height-1) }, func() { b.grow(right, height-1) })
}

type visit struct {
	index  int
	height uint32
}

// Verify walks nodes breadth-first from the root and checks that they form a
// complete binary tree of the given height in which every slot is reached
// exactly once.
func Verify(nodes []Node, height uint32) error {
	if err := checkHeight(height); err != nil {
		return err
	}
	if want := NodeCount(height); len(nodes) != want {
		return fmt.Errorf("%w: %d nodes, want %d", ErrMalformed, len(nodes), want)
	}
	seen := make([]bool, len(nodes))
	q := queue.New()
	q.Add(visit{index: 0, height: height})
	reached := 0
	for q.Length() > 0 {
		v := q.Remove().(visit)
		if v.index < 0 || v.index >= len(nodes) {
			return fmt.Errorf("%w: child index %d out of range", ErrMalformed, v.index)
		}
		if seen[v.index] {
			return fmt.Errorf("%w: node %d reached twice", ErrMalformed, v.index)
		}
		seen[v.index] = true
		reached++
		n := nodes[v.index]
		if v.height == 0 {
			if n != (Node{}) {
				return fmt.Errorf("%w: leaf %d is %+v", ErrMalformed, v.index, n)
			}
			continue
		}
		if n.Height != v.height {
			return fmt.Errorf("%w: node %d has height %d, want %d", ErrMalformed, v.index, n.Height, v.height)
		}
		if n.IsLeaf() {
			return fmt.Errorf("%w: node %d at height %d has no children", ErrMalformed, v.index, n.Height)
		}
		q.Add(visit{index: n.FirstChild, height: v.height - 1})
		q.Add(visit{index: n.FirstChild + 1, height: v.height - 1})
	}
	if reached != len(nodes) {
		return fmt.Errorf("%w: %d of %d nodes reachable", ErrMalformed, reached, len(nodes))
	}
	return nil
}
