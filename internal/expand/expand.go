// Package expand implements C6, the expander: it expands a single matched
// step upward (ancestors), downward (descendants), or as-is, optionally
// intersecting with a restriction set, and detects cycles while doing so.
package expand

import (
	"github.com/RoaringBitmap/roaring"

	"stepweave/internal/core"
	"stepweave/internal/dag"
	"stepweave/internal/match"
	"stepweave/internal/selerr"
	"stepweave/internal/target"
)

// Expanded is a single step produced by expansion, carrying its inherited
// build qualifier and match-type. Only the originating index keeps its
// match-type; everything reached through expansion becomes MatchOutput.
type Expanded struct {
	Index     int
	Build     target.Build
	MatchType target.MatchType
}

// Set, as a set of valid step indices, restricts expansion: when non-nil,
// expansion results are intersected with it.
type Set map[int]struct{}

func (s Set) bitmap() *roaring.Bitmap {
	b := roaring.New()
	for idx := range s {
		b.Add(uint32(idx))
	}
	return b
}

// Step expands a single matched step against g, subject to an optional
// restriction valid. Results preserve the originating match's Build; only
// m.Index keeps m.MatchType, everything else reached via up/down expansion
// becomes MatchOutput. An unspecified tree qualifier means up-tree, except
// for an exclusion, which then covers only the matched step itself.
func Step(g *dag.Graph, m match.Matched, valid Set) ([]Expanded, error) {
	effectiveTree := m.Tree
	if effectiveTree == target.TreeUnspecified {
		effectiveTree = target.TreeUp
		if m.Build == target.BuildExclude {
			effectiveTree = target.TreeOnly
		}
	}

	if effectiveTree == target.TreeOnly {
		if valid != nil {
			if _, ok := valid[m.Index]; !ok {
				return nil, nil
			}
		}
		return []Expanded{{Index: m.Index, Build: m.Build, MatchType: m.MatchType}}, nil
	}

	if valid != nil {
		if _, ok := valid[m.Index]; !ok {
			return nil, nil
		}
	}

	var set *roaring.Bitmap
	switch effectiveTree {
	case target.TreeDown:
		set = g.Descendants(m.Index).Clone()
	default: // target.TreeUp
		set = g.Ancestors(m.Index).Clone()
	}
	set.Add(uint32(m.Index))
	if valid != nil {
		set.And(valid.bitmap())
	}

	// Bitmap containers are always kept in ascending sorted order, so
	// ToArray() already yields the result in declaration-index order.
	out := make([]Expanded, 0, set.GetCardinality())
	for _, v := range set.ToArray() {
		idx := int(v)
		mt := target.MatchOutput
		if idx == m.Index {
			mt = m.MatchType
		}
		out = append(out, Expanded{Index: idx, Build: m.Build, MatchType: mt})
	}
	return out, nil
}

// All expands every matched step in ms, in order, concatenating results.
func All(g *dag.Graph, ms []match.Matched, valid Set) ([]Expanded, error) {
	var out []Expanded
	for _, m := range ms {
		e, err := Step(g, m, valid)
		if err != nil {
			return nil, err
		}
		out = append(out, e...)
	}
	return out, nil
}

// OrderedChain walks tree in DFS order and returns the visiting sequence
// used when the caller needs a sequence rather than a set: for down, it
// yields descendants first (DFS from children) then self; for up, it walks
// parents post-order, so self is yielded last and roots come first. It
// fails with selerr.CycleDetected, naming the chain by step-string
// representation, if the walk revisits a step already on the current
// chain.
func OrderedChain(tree *core.ParseTree, start int, down bool) ([]int, error) {
	var chain []int
	var out []int

	var visit func(idx int) error
	visit = func(idx int) error {
		for _, c := range chain {
			if c == idx {
				return selerr.CycleDetected(chainStrings(tree, append(chain, idx)))
			}
		}
		chain = append(chain, idx)
		defer func() { chain = chain[:len(chain)-1] }()

		adj := tree.Steps[idx].Children
		if !down {
			adj = tree.Steps[idx].Parents
		}
		for _, next := range adj {
			if err := visit(next); err != nil {
				return err
			}
		}

		// Both directions yield self last: for down, children (and their
		// own descendants) go first; for up, parents (and their own
		// ancestors) go first, so roots come first overall.
		out = append(out, idx)
		return nil
	}

	if err := visit(start); err != nil {
		return nil, err
	}
	return out, nil
}

func chainStrings(tree *core.ParseTree, chain []int) []string {
	out := make([]string, len(chain))
	for i, idx := range chain {
		out[i] = tree.Steps[idx].String()
	}
	return out
}
