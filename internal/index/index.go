// Package index implements C1, the index builder: it turns a raw
// core.ParseTree into one with every reverse-lookup map populated and every
// step's Parents/Children filled in.
//
// Build runs exactly once per parse tree, synchronously, and mutates the
// tree in place, the way graph construction validates immediately rather
// than deferring. This engine's DAG (internal/dag) is built lazily on top
// of the indices computed here, not the other way around.
package index

import (
	"stepweave/internal/core"
	"stepweave/internal/pathutil"
)

// Build computes every reverse-lookup map on tree and annotates each step
// with Parents/Children. One call per tree is enough; calling it again
// recomputes everything from RawOutputs/RawInputs, which is harmless but
// wasted work.
func Build(tree *core.ParseTree) {
	for _, s := range tree.Steps {
		s.Outputs = mapSlice(s.RawOutputs, pathutil.SlashClean)
		s.Inputs = mapSlice(s.RawInputs, pathutil.SlashClean)
	}

	tree.InputTagsMap = reverseMultimap(tree.Steps, func(s *core.Step) []string { return s.InputTags })
	tree.OutputTagsMap = reverseMultimap(tree.Steps, func(s *core.Step) []string { return s.OutputTags })
	tree.MethodMap = reverseMultimap(tree.Steps, func(s *core.Step) []string {
		if m := s.Method(); m != "" {
			return []string{m}
		}
		return nil
	})

	tree.NormalizedOutputMap = reverseMultimap(tree.Steps, func(s *core.Step) []string {
		return mapSlice(s.RawOutputs, pathutil.Normalize)
	})
	tree.NormalizedInputMap = reverseMultimap(tree.Steps, func(s *core.Step) []string {
		return mapSlice(s.RawInputs, pathutil.Normalize)
	})

	regexpLookupSources := []map[string][]int{
		reverseMultimap(tree.Steps, func(s *core.Step) []string { return s.RawOutputs }),
		reverseMultimap(tree.Steps, func(s *core.Step) []string { return s.Outputs }),
	}
	tree.OutputMapLookupRegexp = mergeDistinct(regexpLookupSources...)
	tree.OutputMapLookup = mergeDistinct(tree.OutputMapLookupRegexp, tree.NormalizedOutputMap)

	for _, s := range tree.Steps {
		s.Parents = nil
		s.Children = nil
	}
	for _, s := range tree.Steps {
		// Parents: steps that produce one of s's inputs, by path or tag.
		s.Parents = unionDistinct(
			lookupAll(tree.NormalizedOutputMap, mapSlice(s.RawInputs, pathutil.Normalize)),
			lookupAll(tree.OutputTagsMap, s.InputTags),
		)
		// Children: steps that consume one of s's outputs, by path or tag.
		s.Children = unionDistinct(
			lookupAll(tree.NormalizedInputMap, mapSlice(s.RawOutputs, pathutil.Normalize)),
			lookupAll(tree.InputTagsMap, s.OutputTags),
		)
	}

	tree.MarkBuilt()
}

func mapSlice(in []string, f func(string) string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

// reverseMultimap builds { f(steps[i])[*] -> [i, ...] } with each value list
// deduplicated in first-appearance order.
func reverseMultimap(steps []*core.Step, f func(*core.Step) []string) map[string][]int {
	m := make(map[string][]int)
	for i, s := range steps {
		for _, k := range f(s) {
			appendDistinct(m, k, i)
		}
	}
	return m
}

func appendDistinct(m map[string][]int, key string, idx int) {
	list := m[key]
	for _, v := range list {
		if v == idx {
			return
		}
	}
	m[key] = append(list, idx)
}

// mergeDistinct unions per-key lists across maps, preserving first
// appearance left-to-right across the inputs.
func mergeDistinct(maps ...map[string][]int) map[string][]int {
	out := make(map[string][]int)
	for _, m := range maps {
		for k, list := range m {
			for _, idx := range list {
				appendDistinct(out, k, idx)
			}
		}
	}
	return out
}

func lookupAll(m map[string][]int, keys []string) []int {
	var out []int
	for _, k := range keys {
		out = append(out, m[k]...)
	}
	return out
}

func unionDistinct(lists ...[]int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, list := range lists {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
