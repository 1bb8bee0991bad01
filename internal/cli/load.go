package cli

import (
	"fmt"

	"stepweave/internal/config"
	"stepweave/internal/core"
	"stepweave/internal/selector"
)

// loadAndPrepare reads the fixture at path and runs C1/C2 over it, ready
// for repeated selector.Engine.Select calls.
func loadAndPrepare(path string) (*core.ParseTree, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	tree := core.NewParseTree(cfg.Steps)
	if err := selector.Prepare(tree, cfg.TmpDir); err != nil {
		return nil, fmt.Errorf("preparing parse tree: %w", err)
	}
	return tree, nil
}
