package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/syncpanel/pkg/commands/options"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

var (
	output = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "syncpanel",
		Short: base.Wrap80("Status panel and control for a local folder sync daemon."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	options.AddConnectionArgs(cmd, viper.GetViper())

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addStatus(topLevel)
	addWatch(topLevel)
	addFolder(topLevel)
	addPrefs(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
