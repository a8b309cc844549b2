package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/syncpanel/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based status panel",
		Example: `
syncpanel ui
syncpanel ui --interval=5s --log-file=~/syncpanel.log
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := load(fullScreen)
			if err != nil {
				return err
			}
			i := ui.UI{Service: s.svc, MetricsAddr: s.cfg.MetricsAddr}
			return i.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
