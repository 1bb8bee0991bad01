// Package dag implements C3: a directed acyclic graph over step indices,
// built from a core.ParseTree's Parents/Children edges, exposing
// ancestor/descendant queries. Construction rejects cycles by computing
// each step's full reachability bitmap as a fixed-point closure and
// checking whether any step's bitmap contains itself; ancestor/descendant
// sets are represented as RoaringBitmap bitmaps over step indices rather
// than Go sets, so the expander's restriction intersection is a single
// bitmap And. (The merger does not use these bitmaps; it walks the parse
// tree through expand.OrderedChain.)
package dag

import (
	"sort"

	"github.com/RoaringBitmap/roaring"

	"stepweave/internal/core"
	"stepweave/internal/selerr"
)

// Graph is a validated DAG over a parse tree's step indices. Its edges are
// fixed after Build, but Ancestors and Descendants fill their memo on first
// call, so concurrent callers must synchronize.
type Graph struct {
	n        int
	outgoing [][]int // children, by index, sorted ascending
	incoming [][]int // parents, by index, sorted ascending

	ancestors   []*roaring.Bitmap // memoized per vertex
	descendants []*roaring.Bitmap
}

// Build constructs a Graph from tree's step Parents/Children edges. It
// returns a selerr cycle error if the edges are not acyclic.
func Build(tree *core.ParseTree) (*Graph, error) {
	n := len(tree.Steps)
	g := &Graph{
		n:           n,
		outgoing:    make([][]int, n),
		incoming:    make([][]int, n),
		ancestors:   make([]*roaring.Bitmap, n),
		descendants: make([]*roaring.Bitmap, n),
	}
	for i, s := range tree.Steps {
		g.outgoing[i] = append([]int{}, s.Children...)
		sort.Ints(g.outgoing[i])
	}
	for i, s := range tree.Steps {
		g.incoming[i] = append([]int{}, s.Parents...)
		sort.Ints(g.incoming[i])
	}

	if idx, ok := g.selfReachable(); ok {
		return nil, selerr.CycleDetected(g.witnessCycle(tree, idx))
	}
	return g, nil
}

// Ancestors returns the strict ancestors of step index i as a bitmap,
// memoized after first computation.
func (g *Graph) Ancestors(i int) *roaring.Bitmap {
	if g.ancestors[i] == nil {
		b := roaring.New()
		g.collect(i, g.incoming, b)
		g.ancestors[i] = b
	}
	return g.ancestors[i]
}

// Descendants returns the strict descendants of step index i as a bitmap,
// memoized after first computation.
func (g *Graph) Descendants(i int) *roaring.Bitmap {
	if g.descendants[i] == nil {
		b := roaring.New()
		g.collect(i, g.outgoing, b)
		g.descendants[i] = b
	}
	return g.descendants[i]
}

func (g *Graph) collect(start int, adj [][]int, into *roaring.Bitmap) {
	visited := make([]bool, g.n)
	visited[start] = true
	stack := []int{start}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, v := range adj[u] {
			if visited[v] {
				continue
			}
			visited[v] = true
			into.Add(uint32(v))
			stack = append(stack, v)
		}
	}
}

// selfReachable computes, for every step u, the bitmap of steps reachable
// from u by repeatedly folding each outgoing edge's target and the
// target's own reachability bitmap into u's, until a fixed point is
// reached. A step whose own bitmap ends up containing itself can reach
// itself along some path, which is exactly a cycle. Returns the first
// such step in ascending index order, for determinism.
func (g *Graph) selfReachable() (int, bool) {
	reach := make([]*roaring.Bitmap, g.n)
	for i := range reach {
		reach[i] = roaring.New()
	}

	for changed := true; changed; {
		changed = false
		for u := 0; u < g.n; u++ {
			for _, v := range g.outgoing[u] {
				before := reach[u].GetCardinality()
				reach[u].Add(uint32(v))
				reach[u].Or(reach[v])
				if reach[u].GetCardinality() != before {
					changed = true
				}
			}
		}
	}

	for i := 0; i < g.n; i++ {
		if reach[i].Contains(uint32(i)) {
			return i, true
		}
	}
	return 0, false
}

// witnessCycle reconstructs one concrete cycle reachable from idx (known
// to be self-reachable) by walking outgoing edges in ascending order and
// stopping as soon as a step already on the current path is revisited,
// the same chain-tracking shape internal/expand uses for its own
// cycle detection during traversal.
func (g *Graph) witnessCycle(tree *core.ParseTree, idx int) []string {
	var chain []int
	var found []int

	var visit func(u int) bool
	visit = func(u int) bool {
		for _, c := range chain {
			if c == u {
				found = append(append([]int{}, chain...), u)
				return true
			}
		}
		chain = append(chain, u)
		for _, v := range g.outgoing[u] {
			if visit(v) {
				return true
			}
		}
		chain = chain[:len(chain)-1]
		return false
	}
	visit(idx)

	out := make([]string, len(found))
	for i, v := range found {
		out[i] = tree.Steps[v].String()
	}
	return out
}
