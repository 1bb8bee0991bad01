// Package merge implements C7, the merger: it folds a list of expanded
// targets into a position-indexed map applying exclusion, forced-build
// union, and "insert before earliest dependent" ordering, then verifies
// every selected step's output is unique.
package merge

import (
	"sort"

	"stepweave/internal/core"
	"stepweave/internal/dag"
	"stepweave/internal/expand"
	"stepweave/internal/pathutil"
	"stepweave/internal/selerr"
	"stepweave/internal/target"
)

// epsilon is the monotonic tiebreaker subtracted from a dependency's
// position to insert a new step strictly before it. It is a priority-
// insertion trick, not a real-number precision claim; it is documented as
// sufficient up to roughly 10^6 steps, which covers any realistic workflow.
const epsilon = 1e-7

// Selected is one step in the final, ordered selection result.
type Selected struct {
	Index     int
	Build     target.Build
	MatchType target.MatchType
	Pos       float64
}

type entry struct {
	sel      Selected
	inserted int // insertion order, for stable tie-breaking
}

// Merger folds expand.Expanded records into an ordered selection, memoizing
// each index's all-down-descendants query for the duration of a single
// Fold call. g is the already-validated graph the caller built; Fold
// itself re-derives dependency sets from tree via expand.OrderedChain so
// that the same on-the-fly cycle check expansion performs also guards the
// position computation, rather than trusting g's earlier validation alone.
type Merger struct {
	tree *core.ParseTree
	g    *dag.Graph

	byIndex map[int]*entry
	order   []int // insertion order of byIndex keys, for stable sort

	pos int

	descCache map[int]map[int]struct{}
}

// New creates a Merger for a single Fold call over tree/g.
func New(tree *core.ParseTree, g *dag.Graph) *Merger {
	return &Merger{
		tree:      tree,
		g:         g,
		byIndex:   make(map[int]*entry),
		descCache: make(map[int]map[int]struct{}),
	}
}

// Fold applies every expanded record in order and returns the merged,
// ordered selection. It is a single-use accumulator: call Fold once per
// selection.
func (m *Merger) Fold(items []expand.Expanded) ([]Selected, error) {
	for _, it := range items {
		if err := m.apply(it); err != nil {
			return nil, err
		}
	}
	return m.finish()
}

func (m *Merger) apply(it expand.Expanded) error {
	defer func() { m.pos++ }()

	if it.Build == target.BuildExclude {
		delete(m.byIndex, it.Index)
		return nil
	}

	if existing, ok := m.byIndex[it.Index]; ok {
		if existing.sel.Build == target.BuildForced || it.Build == target.BuildForced {
			existing.sel.Build = target.BuildForced
		} else {
			existing.sel.Build = target.BuildTimestamped
		}
		existing.sel.MatchType = bestMatchType(existing.sel.MatchType, it.MatchType)
		return nil
	}

	deps, err := m.allDownDescendants(it.Index)
	if err != nil {
		return err
	}
	var newPos float64
	minPos, any := m.minPosAmong(deps)
	if any {
		newPos = minPos - epsilon
	} else {
		newPos = float64(m.pos)
	}

	m.byIndex[it.Index] = &entry{
		sel:      Selected{Index: it.Index, Build: it.Build, MatchType: it.MatchType, Pos: newPos},
		inserted: len(m.order),
	}
	m.order = append(m.order, it.Index)
	return nil
}

// bestMatchType returns the "method beats tag beats output" winner between
// a and b.
func bestMatchType(a, b target.MatchType) target.MatchType {
	rank := func(mt target.MatchType) int {
		switch mt {
		case target.MatchMethod:
			return 0
		case target.MatchTag:
			return 1
		default:
			return 2
		}
	}
	if rank(a) <= rank(b) {
		return a
	}
	return b
}

// allDownDescendants returns index's descendants plus itself, memoized per
// index for the lifetime of this Merger. It walks tree via
// expand.OrderedChain rather than querying g's bitmap directly, so the
// position computation carries its own on-the-fly cycle check on top of
// the acyclicity g already proved at Build time.
func (m *Merger) allDownDescendants(index int) (map[int]struct{}, error) {
	if cached, ok := m.descCache[index]; ok {
		return cached, nil
	}
	chain, err := expand.OrderedChain(m.tree, index, true)
	if err != nil {
		return nil, err
	}
	set := make(map[int]struct{}, len(chain))
	for _, idx := range chain {
		set[idx] = struct{}{}
	}
	m.descCache[index] = set
	return set, nil
}

func (m *Merger) minPosAmong(deps map[int]struct{}) (float64, bool) {
	min := 0.0
	any := false
	for idx := range deps {
		e, ok := m.byIndex[idx]
		if !ok {
			continue
		}
		if !any || e.sel.Pos < min {
			min = e.sel.Pos
			any = true
		}
	}
	return min, any
}

func (m *Merger) finish() ([]Selected, error) {
	entries := make([]*entry, 0, len(m.byIndex))
	for _, idx := range m.order {
		if e, ok := m.byIndex[idx]; ok {
			entries = append(entries, e)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].sel.Pos != entries[j].sel.Pos {
			return entries[i].sel.Pos < entries[j].sel.Pos
		}
		return entries[i].inserted < entries[j].inserted
	})

	result := make([]Selected, len(entries))
	for i, e := range entries {
		result[i] = e.sel
	}

	if err := checkOutputConflicts(m.tree, result); err != nil {
		return nil, err
	}
	return result, nil
}

func checkOutputConflicts(tree *core.ParseTree, result []Selected) error {
	seen := make(map[string]struct{})
	var dupes []string
	dupeSeen := make(map[string]struct{})
	for _, s := range result {
		for _, o := range tree.Steps[s.Index].Outputs {
			n := pathutil.Normalize(o)
			if _, ok := seen[n]; ok {
				if _, already := dupeSeen[n]; !already {
					dupes = append(dupes, n)
					dupeSeen[n] = struct{}{}
				}
				continue
			}
			seen[n] = struct{}{}
		}
	}
	if len(dupes) > 0 {
		return selerr.OutputConflict(dupes)
	}
	return nil
}
