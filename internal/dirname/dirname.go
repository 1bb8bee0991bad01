// Package dirname implements C2, the step directory namer: it assigns each
// step a unique, length-bounded temporary directory derived from its
// outputs and tags.
package dirname

import (
	"strconv"
	"strings"

	"stepweave/internal/core"
	"stepweave/internal/pathutil"
	"stepweave/internal/selerr"
)

// MaxPath is the path-length budget: the configured temp-dir root must be
// shorter than it, and each step's directory name is truncated to it before
// any ".N" collision suffix is appended.
const MaxPath = 200

// Assign computes and sets Step.Dir for every step in tree, rooted under
// root. root must resolve to an absolute path shorter than MaxPath.
func Assign(tree *core.ParseTree, root string) error {
	root = pathutil.AbsolutePath(root)
	if len(root) >= MaxPath {
		return selerr.DirTooLong(root)
	}

	truncated := make([]string, len(tree.Steps))
	groups := make(map[string][]int)
	for i, s := range tree.Steps {
		name := root + "/" + strings.Join(sanitize(append(append([]string{}, s.RawOutputs...), s.OutputTags...)), ",")
		if len(name) > MaxPath {
			name = name[:MaxPath]
		}
		truncated[i] = name
		groups[name] = append(groups[name], i)
	}

	for name, idxs := range groups {
		if len(idxs) == 1 {
			tree.Steps[idxs[0]].Dir = name
			continue
		}
		for suffix, idx := range idxs {
			tree.Steps[idx].Dir = name + "." + strconv.Itoa(suffix)
		}
	}
	return nil
}

func sanitize(parts []string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.ReplaceAll(p, "/", "_")
	}
	return out
}
