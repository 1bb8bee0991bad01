// Package selector ties C4 (target parsing) through C7 (merging)
// together into the single select-steps entry point the rest of the
// system calls.
package selector

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"stepweave/internal/core"
	"stepweave/internal/dag"
	"stepweave/internal/expand"
	"stepweave/internal/match"
	"stepweave/internal/merge"
	"stepweave/internal/observe"
	"stepweave/internal/target"
)

// Engine holds the cross-call caches the engine's contract requires: the
// DAG is built lazily and memoized per parse tree, keyed here by the
// tree's pointer identity. A bounded LRU is used instead of an unbounded
// map so a long-lived process embedding the engine across many distinct
// parse trees doesn't grow the cache without limit.
type Engine struct {
	graphs *lru.Cache[*core.ParseTree, *dag.Graph]

	// Recorder, if set, observes every Select call. It never influences
	// the result; see internal/observe.
	Recorder *observe.Recorder
}

// DefaultGraphCacheSize is the number of distinct parse trees' DAGs kept
// memoized at once.
const DefaultGraphCacheSize = 64

// New creates an Engine with the default DAG cache size and no recorder.
func New() *Engine {
	c, _ := lru.New[*core.ParseTree, *dag.Graph](DefaultGraphCacheSize)
	return &Engine{graphs: c}
}

// Select runs select-steps: parse every target name, match each against
// tree, expand each match, and merge the results into a single ordered,
// deduplicated, conflict-checked step index list.
//
// tree must already have been built by index.Build (and, typically,
// dirname.Assign); Select itself never mutates tree.
func (e *Engine) Select(tree *core.ParseTree, targetNames []string) ([]merge.Selected, error) {
	var finish func(stepCount int, err error)
	if e.Recorder != nil {
		finish = e.Recorder.Begin(targetNames)
	}

	sel, err := e.selectUnobserved(tree, targetNames)
	if finish != nil {
		finish(len(sel), err)
	}
	return sel, err
}

func (e *Engine) selectUnobserved(tree *core.ParseTree, targetNames []string) ([]merge.Selected, error) {
	g, err := e.graphFor(tree)
	if err != nil {
		return nil, err
	}

	parsed := target.ParseAll(targetNames)

	matched, err := match.ResolveAll(tree, parsed)
	if err != nil {
		return nil, err
	}

	expanded, err := expand.All(g, matched, nil)
	if err != nil {
		return nil, err
	}

	m := merge.New(tree, g)
	return m.Fold(expanded)
}

// Indices is a convenience wrapper over Select that returns just the
// ordered step indices.
func (e *Engine) Indices(tree *core.ParseTree, targetNames []string) ([]int, error) {
	sel, err := e.Select(tree, targetNames)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(sel))
	for i, s := range sel {
		out[i] = s.Index
	}
	return out, nil
}

func (e *Engine) graphFor(tree *core.ParseTree) (*dag.Graph, error) {
	if g, ok := e.graphs.Get(tree); ok {
		return g, nil
	}
	g, err := dag.Build(tree)
	if err != nil {
		return nil, err
	}
	e.graphs.Add(tree, g)
	return g, nil
}
