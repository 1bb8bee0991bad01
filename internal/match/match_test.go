package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepweave/internal/core"
	"stepweave/internal/index"
	"stepweave/internal/match"
	"stepweave/internal/target"
)

func buildTree(steps []*core.Step) *core.ParseTree {
	tree := core.NewParseTree(steps)
	index.Build(tree)
	return tree
}

func TestResolve_LiteralOutput(t *testing.T) {
	tree := buildTree([]*core.Step{
		{RawOutputs: []string{"a"}},
		{RawOutputs: []string{"b"}},
	})
	m, err := match.Resolve(tree, target.Parse("b"))
	require.NoError(t, err)
	require.Len(t, m, 1)
	assert.Equal(t, 1, m[0].Index)
}

func TestResolve_TargetNotFound(t *testing.T) {
	tree := buildTree([]*core.Step{{RawOutputs: []string{"a"}}})
	_, err := match.Resolve(tree, target.Parse("missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target not found: missing")
}

func TestResolve_Wildcard(t *testing.T) {
	tree := buildTree([]*core.Step{
		{RawOutputs: []string{"a"}},
		{RawOutputs: []string{"b"}},
		{RawOutputs: []string{"c"}},
	})
	m, err := match.Resolve(tree, target.Parse("..."))
	require.NoError(t, err)
	require.Len(t, m, 3)
	assert.Equal(t, []int{0, 1, 2}, indices(m))
}

func TestResolve_RegexOutput(t *testing.T) {
	tree := buildTree([]*core.Step{
		{RawOutputs: []string{"build/a.o"}},
		{RawOutputs: []string{"build/b.o"}},
		{RawOutputs: []string{"other.txt"}},
	})
	m, err := match.Resolve(tree, target.Parse("@build/.*\\.o"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, indices(m), "regex matches must come back sorted ascending (declaration order)")
}

func TestResolve_InvalidRegex(t *testing.T) {
	tree := buildTree([]*core.Step{{RawOutputs: []string{"a"}}})
	_, err := match.Resolve(tree, target.Parse("@("))
	require.Error(t, err)
}

func TestResolve_TagWildcardMatchesOnlyTaggedSteps(t *testing.T) {
	tree := buildTree([]*core.Step{
		{RawOutputs: []string{"a"}, OutputTags: []string{"x"}},
		{RawOutputs: []string{"b"}},
	})
	m, err := match.Resolve(tree, target.Parse("%..."))
	require.NoError(t, err)
	require.Len(t, m, 1)
	assert.Equal(t, 0, m[0].Index)
}

func TestResolve_Method(t *testing.T) {
	tree := buildTree([]*core.Step{
		{RawOutputs: []string{"a"}, Opts: core.Options{Method: "render"}},
	})
	m, err := match.Resolve(tree, target.Parse("render()"))
	require.NoError(t, err)
	require.Len(t, m, 1)
	assert.Equal(t, 0, m[0].Index)
}

func indices(m []match.Matched) []int {
	out := make([]int, len(m))
	for i, x := range m {
		out[i] = x.Index
	}
	return out
}
