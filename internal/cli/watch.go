package cli

import (
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"stepweave/internal/config"
	"stepweave/internal/observe"
	"stepweave/internal/selector"
)

func newWatchCmd() *cobra.Command {
	var fixture string

	cmd := &cobra.Command{
		Use:     "watch [targets...]",
		Short:   "Re-run selection whenever the fixture file changes",
		Example: "  stepweave watch -f workflow.yaml -- ^a",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := config.NewWatcher(fixture)
			if err != nil {
				return err
			}
			defer w.Stop()

			eng := selector.New()
			eng.Recorder = observe.NewRecorder(nil)

			runOnce := func() {
				tree, err := loadAndPrepare(fixture)
				if err != nil {
					slog.Error("reload failed", "err", err)
					return
				}
				sel, err := eng.Select(tree, args)
				if err != nil {
					slog.Error("selection failed", "err", err)
					return
				}
				for _, s := range sel {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", s.Index, s.Build, tree.Steps[s.Index].String())
				}
			}

			runOnce()
			for {
				select {
				case ev, ok := <-w.Events():
					if !ok {
						return nil
					}
					if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
						runOnce()
					}
				case err, ok := <-w.Errors():
					if !ok {
						return nil
					}
					slog.Error("watch error", "err", err)
				case <-cmd.Context().Done():
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Path to a parse-tree fixture (YAML). Required.")
	cmd.MarkFlagRequired("fixture")
	return cmd
}
