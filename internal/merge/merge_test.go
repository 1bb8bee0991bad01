package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepweave/internal/core"
	"stepweave/internal/dag"
	"stepweave/internal/expand"
	"stepweave/internal/index"
	"stepweave/internal/merge"
	"stepweave/internal/target"
)

func chainGraph(t *testing.T) (*core.ParseTree, *dag.Graph) {
	t.Helper()
	tree := core.NewParseTree([]*core.Step{
		{RawOutputs: []string{"a"}},
		{RawOutputs: []string{"b"}, RawInputs: []string{"a"}},
		{RawOutputs: []string{"c"}, RawInputs: []string{"b"}},
	})
	index.Build(tree)
	g, err := dag.Build(tree)
	require.NoError(t, err)
	return tree, g
}

func TestFold_InsertsBeforeEarliestDependent(t *testing.T) {
	tree, g := chainGraph(t)
	m := merge.New(tree, g)

	sel, err := m.Fold([]expand.Expanded{
		{Index: 2, Build: target.BuildTimestamped, MatchType: target.MatchOutput},
		{Index: 0, Build: target.BuildTimestamped, MatchType: target.MatchOutput},
		{Index: 1, Build: target.BuildTimestamped, MatchType: target.MatchOutput},
	})
	require.NoError(t, err)
	require.Len(t, sel, 3)
	assert.Equal(t, []int{0, 1, 2}, indices(sel), "a and b must sort before c despite being folded after it")
}

func TestFold_DuplicateUpgradesToForced(t *testing.T) {
	tree, g := chainGraph(t)
	m := merge.New(tree, g)

	sel, err := m.Fold([]expand.Expanded{
		{Index: 2, Build: target.BuildTimestamped, MatchType: target.MatchOutput},
		{Index: 2, Build: target.BuildForced, MatchType: target.MatchOutput},
	})
	require.NoError(t, err)
	require.Len(t, sel, 1)
	assert.Equal(t, target.BuildForced, sel[0].Build)
}

func TestFold_Exclusion(t *testing.T) {
	tree := core.NewParseTree([]*core.Step{
		{RawOutputs: []string{"a"}},
		{RawOutputs: []string{"b"}, RawInputs: []string{"a"}},
		{RawOutputs: []string{"c"}, RawInputs: []string{"b"}},
		{RawOutputs: []string{"d"}, RawInputs: []string{"c"}},
	})
	index.Build(tree)
	g, err := dag.Build(tree)
	require.NoError(t, err)

	m := merge.New(tree, g)
	sel, err := m.Fold([]expand.Expanded{
		{Index: 0, Build: target.BuildTimestamped, MatchType: target.MatchOutput},
		{Index: 1, Build: target.BuildTimestamped, MatchType: target.MatchOutput},
		{Index: 2, Build: target.BuildTimestamped, MatchType: target.MatchOutput},
		{Index: 3, Build: target.BuildTimestamped, MatchType: target.MatchOutput},
		{Index: 1, Build: target.BuildExclude, MatchType: target.MatchOutput},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, indices(sel))
}

func TestFold_OutputConflict(t *testing.T) {
	tree := core.NewParseTree([]*core.Step{
		{RawOutputs: []string{"x"}},
		{RawOutputs: []string{"x"}},
	})
	index.Build(tree)
	g, err := dag.Build(tree)
	require.NoError(t, err)

	m := merge.New(tree, g)
	_, err = m.Fold([]expand.Expanded{
		{Index: 0, MatchType: target.MatchOutput},
		{Index: 1, MatchType: target.MatchOutput},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicated outputs:")
}

func TestFold_MatchTypePrecedence(t *testing.T) {
	tree, g := chainGraph(t)
	m := merge.New(tree, g)

	sel, err := m.Fold([]expand.Expanded{
		{Index: 0, MatchType: target.MatchOutput},
		{Index: 0, MatchType: target.MatchMethod},
		{Index: 0, MatchType: target.MatchTag},
	})
	require.NoError(t, err)
	require.Len(t, sel, 1)
	assert.Equal(t, target.MatchMethod, sel[0].MatchType, "method beats tag beats output")
}

func indices(sel []merge.Selected) []int {
	out := make([]int, len(sel))
	for i, s := range sel {
		out[i] = s.Index
	}
	return out
}
