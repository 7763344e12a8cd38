package bvh

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/momentics/syncsplit/api"
	"github.com/momentics/syncsplit/internal/concurrency"
)

func randomBoxes(n int, seed int64) []AABB {
	rnd := rand.New(rand.NewSource(seed))
	boxes := make([]AABB, n)
	for i := range boxes {
		var a, d [3]float32
		for k := 0; k < 3; k++ {
			a[k] = rnd.Float32() * 100
			d[k] = a[k] + rnd.Float32()*3
		}
		boxes[i] = Box(a, d)
	}
	return boxes
}

// checkTree verifies structure: each primitive in exactly one leaf, every
// node reached once, parent bounds containing child bounds.
func checkTree(t *testing.T, tree *Tree, prims []AABB, maxLeaf int) {
	t.Helper()
	if len(tree.Nodes) > 2*len(prims)-1 {
		t.Fatalf("%d nodes for %d primitives", len(tree.Nodes), len(prims))
	}
	sorted := slices.Clone(tree.Order)
	slices.Sort(sorted)
	for i, p := range sorted {
		if int(p) != i {
			t.Fatalf("Order is not a permutation: position %d holds %d", i, p)
		}
	}
	reached := make([]int, len(tree.Nodes))
	covered := 0
	var walk func(i int32)
	walk = func(i int32) {
		reached[i]++
		n := tree.Nodes[i]
		if n.IsLeaf() {
			if int(n.Count) > maxLeaf {
				t.Errorf("leaf %d holds %d primitives, max %d", i, n.Count, maxLeaf)
			}
			for _, p := range tree.Order[n.First : n.First+n.Count] {
				if !n.Bounds.Contains(prims[p]) {
					t.Errorf("leaf %d does not contain primitive %d", i, p)
				}
			}
			covered += int(n.Count)
			return
		}
		for _, c := range []int32{n.Child, n.Child + 1} {
			if !n.Bounds.Contains(tree.Nodes[c].Bounds) {
				t.Errorf("node %d does not contain child %d", i, c)
			}
			walk(c)
		}
	}
	walk(0)
	if covered != len(prims) {
		t.Errorf("leaves cover %d primitives, want %d", covered, len(prims))
	}
	for i, r := range reached {
		if r != 1 {
			t.Errorf("node %d reached %d times", i, r)
		}
	}
}

func TestBuildParallel(t *testing.T) {
	pool := concurrency.NewPool(concurrency.WithWorkers(4))
	defer pool.Close()

	prims := randomBoxes(5000, 1)
	tree, err := Build(prims, pool, WithParallelThreshold(64))
	if err != nil {
		t.Fatal(err)
	}
	checkTree(t, tree, prims, defaultMaxLeafSize)

	serial, err := Build(prims, api.Inline)
	if err != nil {
		t.Fatal(err)
	}
	if serial.Len() != tree.Len() {
		t.Errorf("serial build has %d nodes, parallel %d", serial.Len(), tree.Len())
	}
}

func TestBuildSingleLeaves(t *testing.T) {
	prims := randomBoxes(257, 2)
	tree, err := Build(prims, api.Inline, WithMaxLeafSize(1))
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 2*len(prims)-1 {
		t.Errorf("Len() = %d, want %d", tree.Len(), 2*len(prims)-1)
	}
	checkTree(t, tree, prims, 1)
	if d := tree.Depth(); d != 10 {
		t.Errorf("Depth() = %d, want 10", d)
	}
}

func TestBuildDegenerate(t *testing.T) {
	tree, err := Build(nil, api.Inline)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 0 || tree.Depth() != 0 {
		t.Errorf("empty input: Len %d, Depth %d", tree.Len(), tree.Depth())
	}
	tree.Query(Box([3]float32{}, [3]float32{1, 1, 1}), func(int) bool {
		t.Errorf("query on empty tree reported a primitive")
		return true
	})

	// identical boxes still split by count
	same := make([]AABB, 100)
	for i := range same {
		same[i] = Box([3]float32{1, 1, 1}, [3]float32{2, 2, 2})
	}
	tree, err = Build(same, api.Inline, WithMaxLeafSize(2))
	if err != nil {
		t.Fatal(err)
	}
	checkTree(t, tree, same, 2)
}

func TestQueryMatchesBruteForce(t *testing.T) {
	pool := concurrency.NewPool(concurrency.WithWorkers(2))
	defer pool.Close()

	prims := randomBoxes(2000, 3)
	tree, err := Build(prims, pool, WithParallelThreshold(128))
	if err != nil {
		t.Fatal(err)
	}
	rnd := rand.New(rand.NewSource(4))
	for q := 0; q < 50; q++ {
		var a, d [3]float32
		for k := 0; k < 3; k++ {
			a[k] = rnd.Float32() * 100
			d[k] = a[k] + rnd.Float32()*20
		}
		box := Box(a, d)
		var got []int
		tree.Query(box, func(p int) bool {
			got = append(got, p)
			return true
		})
		var want []int
		for i, p := range prims {
			if p.Overlaps(box) {
				want = append(want, i)
			}
		}
		slices.Sort(got)
		if !slices.Equal(got, want) {
			t.Fatalf("query %d: got %d hits, want %d", q, len(got), len(want))
		}
	}
}

func TestQueryStopsEarly(t *testing.T) {
	prims := randomBoxes(500, 5)
	tree, err := Build(prims, api.Inline)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	tree.Query(Box([3]float32{-1, -1, -1}, [3]float32{200, 200, 200}), func(int) bool {
		calls++
		return calls < 3
	})
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestAABB(t *testing.T) {
	a := Box([3]float32{2, 0, 0}, [3]float32{0, 1, 1})
	if a.Min != [3]float32{0, 0, 0} || a.Max != [3]float32{2, 1, 1} {
		t.Errorf("Box did not order corners: %+v", a)
	}
	if a.LongestAxis() != 0 {
		t.Errorf("LongestAxis() = %d, want 0", a.LongestAxis())
	}
	if !Empty().IsEmpty() || a.IsEmpty() {
		t.Errorf("IsEmpty wrong")
	}
	if Empty().Union(a) != a {
		t.Errorf("Empty is not the identity of Union")
	}
	b := Box([3]float32{1, 1, 1}, [3]float32{3, 3, 3})
	if !a.Overlaps(b) || a.Contains(b) || !a.Union(b).Contains(b) {
		t.Errorf("overlap/contain relations wrong for %+v and %+v", a, b)
	}
	if a.Overlaps(Box([3]float32{5, 5, 5}, [3]float32{6, 6, 6})) {
		t.Errorf("disjoint boxes overlap")
	}
}
