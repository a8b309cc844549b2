package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"tableflip.dev/syncpanel/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the daemon and print a line per pass until interrupted.",
		Example: `
syncpanel watch
syncpanel watch --interval=10s --metrics-addr=:9090
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := load(longRunning)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			w := watch.Watch{Service: s.svc, MetricsAddr: s.cfg.MetricsAddr}
			return w.Do(ctx)
		},
	}

	topLevel.AddCommand(cmd)
}
