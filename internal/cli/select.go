package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stepweave/internal/observe"
	"stepweave/internal/selector"
)

func newSelectCmd() *cobra.Command {
	var fixture string

	cmd := &cobra.Command{
		Use:     "select [targets...]",
		Short:   "Compute the ordered list of steps a set of targets requires",
		Example: "  stepweave select -f workflow.yaml -- +c -b",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadAndPrepare(fixture)
			if err != nil {
				return err
			}

			eng := selector.New()
			eng.Recorder = observe.NewRecorder(nil)

			sel, err := eng.Select(tree, args)
			if err != nil {
				return err
			}

			for _, s := range sel {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", s.Index, s.Build, tree.Steps[s.Index].String())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Path to a parse-tree fixture (YAML). Required.")
	cmd.MarkFlagRequired("fixture")
	return cmd
}
