package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/syncpanel/pkg/commands/options"
	"tableflip.dev/syncpanel/pkg/runner/status"
)

func addStatus(topLevel *cobra.Command) {
	ro := &options.ReportOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the synced folders, their devices and the transfer rate.",
		Example: `
syncpanel status
syncpanel status --devices
syncpanel status --json --secrets
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := load(oneShot)
			if err != nil {
				return output.HandleError(err)
			}
			r := status.Status{
				Service: s.svc,
				JSON:    output.JSON,
				Devices: ro.Devices,
				Secrets: ro.Secrets,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddReportArgs(cmd, ro)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
