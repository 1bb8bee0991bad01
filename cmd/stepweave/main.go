// Command stepweave is a CLI front end over the step selection engine: it
// loads a fixture (already shaped like the engine's parse-tree input
// contract) and runs select-steps against it for a set of user-typed
// target expressions.
package main

import (
	"fmt"
	"os"

	"stepweave/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
