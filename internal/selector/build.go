package selector

import (
	"stepweave/internal/core"
	"stepweave/internal/dirname"
	"stepweave/internal/index"
)

// Prepare runs C1 (index.Build) and C2 (dirname.Assign) over tree, the
// one-time mutation pass every parse tree needs before Select can be
// called against it.
func Prepare(tree *core.ParseTree, tmpDir string) error {
	index.Build(tree)
	return dirname.Assign(tree, tmpDir)
}
