package splitter_test

import (
	"fmt"
	"sync"

	"github.com/momentics/syncsplit/splitter"
)

// node stores its height and the index of its first child; the second child
// always follows the first. Zero means leaf, as the root occupies index 0.
type node struct {
	height     uint32
	firstChild int
}

func createChildren(parent *node, s *splitter.Splitter[node], height uint32) {
	if height == 0 {
		return
	}
	left, right, first, err := s.PopTwo()
	if err != nil {
		panic("arena too small")
	}
	*parent = node{height: height, firstChild: first}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		createChildren(left, s, height-1)
	}()
	createChildren(right, s, height-1)
	wg.Wait()
}

// Build a binary tree of height 5 with goroutines and keep all nodes in one
// slice.
func ExampleSplitter() {
	arena := make([]node, 500)
	s := splitter.New(arena)
	root, _, err := s.Pop()
	if err != nil {
		panic(err)
	}
	createChildren(root, s, 5)
	n := s.Done()
	arena = arena[:n]

	fmt.Println(n)
	fmt.Println(arena[0].height, arena[0].firstChild)
	// Output:
	// 63
	// 5 1
}

func ExampleSplitter_PopN() {
	buf := []string{"a", "b", "c", "d", "e"}
	s := splitter.New(buf)
	run, start, _ := s.PopN(3)
	run[0], run[1], run[2] = "x", "y", "z"
	_, _, err := s.PopN(3)
	fmt.Println(start, err != nil, s.Done())
	fmt.Println(buf)
	// Output:
	// 0 true 5
	// [x y z d e]
}
