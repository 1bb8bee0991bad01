// Package cli is the stepweave command tree: select, plan, and watch,
// built on cobra following the convention mache's cmd package uses.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the stepweave root command and its subcommands.
func NewRootCmd() *cobra.Command {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:   "stepweave",
		Short: "Deterministic step selection for data-processing workflows",
	}

	root.AddCommand(newSelectCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newWatchCmd())
	return root
}
