package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"stepweave/internal/observe"
	"stepweave/internal/selector"
)

// planEntry is a single step in a rendered plan: its index, build
// qualifier, outputs and directory, grounded on the sdflow reference's
// YAML-oriented reporting of what a run would do. The target that matched
// the step is not recorded.
type planEntry struct {
	Index   int      `yaml:"index"`
	Build   string   `yaml:"build"`
	Outputs []string `yaml:"outputs"`
	Dir     string   `yaml:"dir"`
}

func newPlanCmd() *cobra.Command {
	var fixture string

	cmd := &cobra.Command{
		Use:     "plan [targets...]",
		Short:   "Render the selected plan as YAML",
		Example: "  stepweave plan -f workflow.yaml -- ...",
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

			entries := make([]planEntry, len(sel))
			for i, s := range sel {
				step := tree.Steps[s.Index]
				entries[i] = planEntry{
					Index:   s.Index,
					Build:   string(s.Build),
					Outputs: step.RawOutputs,
					Dir:     step.Dir,
				}
			}

			out, err := yaml.Marshal(entries)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Path to a parse-tree fixture (YAML). Required.")
	cmd.MarkFlagRequired("fixture")
	return cmd
}
