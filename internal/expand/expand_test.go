package expand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepweave/internal/core"
	"stepweave/internal/dag"
	"stepweave/internal/expand"
	"stepweave/internal/index"
	"stepweave/internal/match"
	"stepweave/internal/target"
)

func buildGraph(t *testing.T, steps []*core.Step) (*core.ParseTree, *dag.Graph) {
	t.Helper()
	tree := core.NewParseTree(steps)
	index.Build(tree)
	g, err := dag.Build(tree)
	require.NoError(t, err)
	return tree, g
}

func chain() []*core.Step {
	return []*core.Step{
		{RawOutputs: []string{"a"}},
		{RawOutputs: []string{"b"}, RawInputs: []string{"a"}},
		{RawOutputs: []string{"c"}, RawInputs: []string{"b"}},
	}
}

func TestStep_UnspecifiedTreeIsUp(t *testing.T) {
	_, g := buildGraph(t, chain())
	out, err := expand.Step(g, match.Matched{Index: 2, Tree: target.TreeUnspecified}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2}, onlyIndices(out))
}

func TestStep_DownTree(t *testing.T) {
	_, g := buildGraph(t, chain())
	out, err := expand.Step(g, match.Matched{Index: 0, Tree: target.TreeDown}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2}, onlyIndices(out))
}

func TestStep_OnlyTree(t *testing.T) {
	_, g := buildGraph(t, chain())
	out, err := expand.Step(g, match.Matched{Index: 1, Tree: target.TreeOnly}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, onlyIndices(out))
}

func TestStep_OnlyTreeOutsideRestrictionIsEmpty(t *testing.T) {
	_, g := buildGraph(t, chain())
	restriction := expand.Set{0: {}}
	out, err := expand.Step(g, match.Matched{Index: 1, Tree: target.TreeOnly}, restriction)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStep_RestrictionIntersectsUpExpansion(t *testing.T) {
	_, g := buildGraph(t, chain())
	restriction := expand.Set{1: {}, 2: {}}
	out, err := expand.Step(g, match.Matched{Index: 2, Tree: target.TreeUnspecified}, restriction)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2}, onlyIndices(out), "ancestor 0 is outside the restriction set")
}

func TestStep_OriginatingIndexKeepsMatchType_OthersBecomeOutput(t *testing.T) {
	_, g := buildGraph(t, chain())
	out, err := expand.Step(g, match.Matched{Index: 0, Tree: target.TreeDown, MatchType: target.MatchTag}, nil)
	require.NoError(t, err)

	for _, e := range out {
		if e.Index == 0 {
			assert.Equal(t, target.MatchTag, e.MatchType)
		} else {
			assert.Equal(t, target.MatchOutput, e.MatchType)
		}
	}
}

func TestOrderedChain_DownYieldsDescendantsBeforeSelf(t *testing.T) {
	tree, _ := buildGraph(t, chain())
	out, err := expand.OrderedChain(tree, 0, true)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, out)
}

func TestOrderedChain_UpYieldsRootsFirst(t *testing.T) {
	tree, _ := buildGraph(t, chain())
	out, err := expand.OrderedChain(tree, 2, false)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, out)
}

func onlyIndices(out []expand.Expanded) []int {
	idx := make([]int, len(out))
	for i, e := range out {
		idx[i] = e.Index
	}
	return idx
}
