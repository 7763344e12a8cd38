// File: bvh/aabb.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Axis-aligned bounding boxes.

package bvh

import "math"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max [3]float32
}

// Empty returns the box containing nothing; it is the identity of Union.
func Empty() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: [3]float32{inf, inf, inf},
		Max: [3]float32{-inf, -inf, -inf},
	}
}

// Box returns the box spanned by two corners given in any order.
func Box(a, b [3]float32) AABB {
	var r AABB
	for i := 0; i < 3; i++ {
		r.Min[i] = min(a[i], b[i])
		r.Max[i] = max(a[i], b[i])
	}
	return r
}

// IsEmpty reports whether b contains no point.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Union returns the smallest box containing b and o.
func (b AABB) Union(o AABB) AABB {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], o.Min[i])
		b.Max[i] = max(b.Max[i], o.Max[i])
	}
	return b
}

// Centroid returns the center point of b.
func (b AABB) Centroid() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Overlaps reports whether b and o share at least one point.
func (b AABB) Overlaps(o AABB) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] < o.Min[i] || o.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// Contains reports whether o lies completely inside b.
func (b AABB) Contains(o AABB) bool {
	for i := 0; i < 3; i++ {
		if o.Min[i] < b.Min[i] || o.Max[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// LongestAxis returns the axis (0, 1 or 2) along which b is widest.
func (b AABB) LongestAxis() int {
	axis := 0
	extent := b.Max[0] - b.Min[0]
	for i := 1; i < 3; i++ {
		if e := b.Max[i] - b.Min[i]; e > extent {
			axis, extent = i, e
		}
	}
	return axis
}
