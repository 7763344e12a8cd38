// Package bvh
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package bvh builds bounding-volume hierarchies over axis-aligned boxes.
//
// The tree is built top-down by recursive median splits. All nodes live in
// one slice sized for the worst case of 2n-1 nodes; sibling pairs are claimed
// from a splitter so that subtrees can be built concurrently without locks,
// and the slice is truncated to the nodes actually used afterwards.
package bvh

import (
	"cmp"
	"fmt"
	"slices"
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

// Node is a BVH node. Interior nodes have Count == 0 and their children at
// Child and Child+1. Leaves cover Order[First : First+Count] of their tree.
type Node struct {
	Bounds AABB
	Child  int32
	First  int32
	Count  int32
}

// IsLeaf reports whether n references primitives.
func (n Node) IsLeaf() bool {
	return n.Count > 0
}

// Tree is a built hierarchy. Nodes[0] is the root.
type Tree struct {
	Nodes []Node
	// Order is a permutation of the primitive indices; every leaf covers a
	// contiguous run of it.
	Order []int32
	prims []AABB
}

// Build constructs a BVH over prims. Subtrees of at least the parallel
// threshold are built through j. prims must not be modified while the tree
// is in use.
func Build(prims []AABB, j api.Joiner, opts ...Option) (*Tree, error) {
	cfg := config{
		maxLeafSize:       defaultMaxLeafSize,
		parallelThreshold: defaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	t := &Tree{prims: prims}
	if len(prims) == 0 {
		return t, nil
	}
	if len(prims) > 1<<30 {
		return nil, api.WrapError(api.ErrCodeInvalidArgument, "bvh: too many primitives", api.ErrInvalidArgument).
			WithContext("count", len(prims))
	}

	t.Order = make([]int32, len(prims))
	for i := range t.Order {
		t.Order[i] = int32(i)
	}
	arena := make([]Node, 2*len(prims)-1)
	s := splitter.New(arena)
	root, _, err := s.Pop()
	if err != nil {
		return nil, fmt.Errorf("bvh: %w", err)
	}
	b := &builder{
		cfg:    cfg,
		j:      j,
		s:      s,
		prims:  prims,
		order:  t.Order,
		center: make([][3]float32, len(prims)),
	}
	for i, p := range prims {
		b.center[i] = p.Centroid()
	}
	b.split(root, 0, len(prims))
	n := s.Done()
	if errp := b.failed.Load(); errp != nil {
		return nil, fmt.Errorf("bvh: node arena exhausted: %w", *errp)
	}
	t.Nodes = arena[:n:n]
	tracer().Infof("bvh: %d primitives, %d nodes", len(prims), n)
	return t, nil
}

type builder struct {
	cfg    config
	j      api.Joiner
	s      *splitter.Splitter[Node]
	prims  []AABB
	order  []int32
	center [][3]float32
	failed atomic.Pointer[error]
}

// split fills node with the subtree over order[lo:hi]. Concurrent calls work
// on disjoint ranges of order and on disjoint nodes.
func (b *builder) split(node *Node, lo, hi int) {
	bounds, cbounds := Empty(), Empty()
	for _, p := range b.order[lo:hi] {
		bounds = bounds.Union(b.prims[p])
		cbounds = cbounds.Union(AABB{Min: b.center[p], Max: b.center[p]})
	}
	if hi-lo <= b.cfg.maxLeafSize {
		*node = Node{Bounds: bounds, First: int32(lo), Count: int32(hi - lo)}
		return
	}
	axis := cbounds.LongestAxis()
	slices.SortFunc(b.order[lo:hi], func(x, y int32) int {
		if c := cmp.Compare(b.center[x][axis], b.center[y][axis]); c != 0 {
			return c
		}
		return cmp.Compare(x, y)
	})
	left, right, first, err := b.s.PopTwo()
	if err != nil {
		b.failed.CompareAndSwap(nil, &err)
		*node = Node{Bounds: bounds, First: int32(lo), Count: int32(hi - lo)}
		return
	}
	*node = Node{Bounds: bounds, Child: int32(first)}
	mid := lo + (hi-lo)/2
	if hi-lo < b.cfg.parallelThreshold {
		b.split(left, lo, mid)
		b.split(right, mid, hi)
		return
	}
	b.j.Join(func() { b.split(left, lo, mid) }, func() { b.split(right, mid, hi) })
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Query calls fn for every primitive whose box overlaps box, visiting nodes
// breadth-first. It stops as soon as fn returns false.
func (t *Tree) Query(box AABB, fn func(prim int) bool) {
	if len(t.Nodes) == 0 {
		return
	}
	q := queue.New()
	q.Add(int32(0))
	for q.Length() > 0 {
		n := t.Nodes[q.Remove().(int32)]
		if !n.Bounds.Overlaps(box) {
			continue
		}
		if !n.IsLeaf() {
			q.Add(n.Child)
			q.Add(n.Child + 1)
			continue
		}
		for _, p := range t.Order[n.First : n.First+n.Count] {
			if t.prims[p].Overlaps(box) && !fn(int(p)) {
				return
			}
		}
	}
}

// Depth returns the number of levels of the tree, 0 for an empty tree.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	type level struct {
		node  int32
		depth int
	}
	depth := 0
	q := queue.New()
	q.Add(level{node: 0, depth: 1})
	for q.Length() > 0 {
		l := q.Remove().(level)
		depth = max(depth, l.depth)
		if n := t.Nodes[l.node]; !n.IsLeaf() {
			q.Add(level{node: n.Child, depth: l.depth + 1})
			q.Add(level{node: n.Child + 1, depth: l.depth + 1})
		}
	}
	return depth
}
