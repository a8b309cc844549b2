package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/syncpanel/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the configuration and the daemon in use.",
		Example: `
syncpanel info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := load(oneShot)
			if err != nil {
				return output.HandleError(err)
			}
			i := info.Info{
				Config:     s.cfg,
				ConfigFile: viper.ConfigFileUsed(),
				Service:    s.svc,
			}
			err = i.Do(context.Background())
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
