package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/syncpanel/pkg/runner/prefs"
)

func addPrefs(topLevel *cobra.Command) {
	p := &prefs.Prefs{}

	cmd := &cobra.Command{
		Use:   "prefs [name[=value]...]",
		Short: "Print or change daemon preferences.",
		Example: `
syncpanel prefs
syncpanel prefs device_name
syncpanel prefs device_name=desktop listening_port=8888
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := load(oneShot)
			if err != nil {
				return output.HandleError(err)
			}
			p.Service = s.svc
			p.Args = args
			err = p.Do(context.Background())
			return output.HandleError(err)
		},
	}

	addPrefsLimit(cmd)
	topLevel.AddCommand(cmd)
}

func addPrefsLimit(parent *cobra.Command) {
	l := &prefs.Limit{}

	cmd := &cobra.Command{
		Use:   "limit <up|down> [rate|on|off]",
		Short: "Switch the upload or download limit on or off. Rates are in kB/s.",
		Example: `
syncpanel prefs limit down 500
syncpanel prefs limit up off
syncpanel prefs limit up on
`,
		ValidArgs: []string{"up", "down"},
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return errors.New("requires a direction and an optional rate")
			}
			l.Direction = args[0]
			if len(args) == 2 {
				l.Value = args[1]
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := load(oneShot)
			if err != nil {
				return output.HandleError(err)
			}
			l.Service = s.svc
			err = l.Do(context.Background())
			return output.HandleError(err)
		},
	}

	parent.AddCommand(cmd)
}
