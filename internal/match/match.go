// Package match implements C5, the target matcher: it resolves a parsed
// target.Target to a set of step indices using the appropriate lookup map
// from the parse tree, preserving declaration order for regex matches.
package match

import (
	"regexp"
	"sort"

	"stepweave/internal/core"
	"stepweave/internal/pathutil"
	"stepweave/internal/selerr"
	"stepweave/internal/target"
)

// Matched is a single resolved step carrying the qualifiers the originating
// target attached to it.
type Matched struct {
	Index     int
	Build     target.Build
	Tree      target.Tree
	MatchType target.MatchType
}

// Resolve resolves t against tree, returning one Matched per matching step
// index. Wildcard and regex matches come back in declaration order; literal
// matches come back in order of first appearance across the lookup keys
// (see literalLookup). It returns selerr.TargetNotFound if nothing matches.
func Resolve(tree *core.ParseTree, t target.Target) ([]Matched, error) {
	literalMap, regexMap := lookupMaps(tree, t.MatchType)

	dots := target.IsWildcard(t.MatchString)
	pattern, isRegex := target.IsRegex(t.MatchString)
	all := t.MatchType == target.MatchOutput && dots && !isRegex

	var indices []int
	switch {
	case all:
		indices = make([]int, len(tree.Steps))
		for i := range tree.Steps {
			indices[i] = i
		}
	case !isRegex && !dots:
		indices = literalLookup(tree, t, literalMap)
	default:
		re, err := compile(pattern, dots)
		if err != nil {
			return nil, err
		}
		indices = regexLookup(regexMap, re)
	}

	if len(indices) == 0 {
		return nil, selerr.TargetNotFound(t.Name)
	}

	out := make([]Matched, len(indices))
	for i, idx := range indices {
		out[i] = Matched{Index: idx, Build: t.Build, Tree: t.Tree, MatchType: t.MatchType}
	}
	return out, nil
}

// ResolveAll resolves every target in ts against tree, in order,
// concatenating their matches.
func ResolveAll(tree *core.ParseTree, ts []target.Target) ([]Matched, error) {
	var out []Matched
	for _, t := range ts {
		m, err := Resolve(tree, t)
		if err != nil {
			return nil, err
		}
		out = append(out, m...)
	}
	return out, nil
}

func lookupMaps(tree *core.ParseTree, mt target.MatchType) (literal, regex map[string][]int) {
	switch mt {
	case target.MatchTag:
		return tree.OutputTagsMap, tree.OutputTagsMap
	case target.MatchMethod:
		return tree.MethodMap, tree.MethodMap
	default:
		return tree.OutputMapLookup, tree.OutputMapLookupRegexp
	}
}

// literalLookup looks up match-string directly, and for output targets
// additionally unions the slash-cleaned and normalized forms, preserving
// order of first appearance across the three keys.
func literalLookup(tree *core.ParseTree, t target.Target, literalMap map[string][]int) []int {
	keys := []string{t.MatchString}
	if t.MatchType == target.MatchOutput {
		keys = append(keys, pathutil.SlashClean(t.MatchString), pathutil.Normalize(t.MatchString))
	}

	seen := make(map[int]struct{})
	var out []int
	for _, k := range keys {
		for _, idx := range literalMap[k] {
			if _, ok := seen[idx]; ok {
				continue
			}
			seen[idx] = struct{}{}
			out = append(out, idx)
		}
	}
	return out
}

// regexLookup iterates regexMap (in Go's unspecified map order) and returns
// the indices of any entry whose key matches re, then sorts ascending so
// results come back in declaration order regardless of map iteration order.
func regexLookup(regexMap map[string][]int, re *regexp.Regexp) []int {
	seen := make(map[int]struct{})
	var out []int
	for k, idxs := range regexMap {
		if !re.MatchString(k) {
			continue
		}
		for _, idx := range idxs {
			if _, ok := seen[idx]; ok {
				continue
			}
			seen[idx] = struct{}{}
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

func compile(pattern string, dots bool) (*regexp.Regexp, error) {
	if dots {
		return regexp.MustCompile(".*"), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, selerr.InvalidRegexf(pattern, err)
	}
	return re, nil
}
