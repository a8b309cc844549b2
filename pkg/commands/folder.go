package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/syncpanel/pkg/runner/folder"
)

func addFolder(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Add, remove and inspect synced folders.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addFolderAdd(cmd)
	addFolderRemove(cmd)
	addFolderSecrets(cmd)
	addFolderPrefs(cmd)

	topLevel.AddCommand(cmd)
}

func addFolderAdd(parent *cobra.Command) {
	a := &folder.Add{}

	cmd := &cobra.Command{
		Use:   "add <dir> [secret]",
		Short: "Start syncing a directory. A new secret is generated when none is given.",
		Example: `
syncpanel folder add ~/Shared
syncpanel folder add ~/Shared ABCDEFGHIJKLMNOPQRSTUVWXYZ234567
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return errors.New("requires a directory and an optional secret")
			}
			a.Dir = args[0]
			if len(args) == 2 {
				a.Secret = args[1]
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := load(oneShot)
			if err != nil {
				return output.HandleError(err)
			}
			a.Service = s.svc
			err = a.Do(context.Background())
			return output.HandleError(err)
		},
	}

	parent.AddCommand(cmd)
}

func addFolderRemove(parent *cobra.Command) {
	r := &folder.Remove{}

	cmd := &cobra.Command{
		Use:     "remove <dir|secret>",
		Aliases: []string{"rm"},
		Short:   "Stop syncing a folder.",
		Example: `
syncpanel folder remove ~/Shared
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires a folder path or secret")
			}
			r.Key = args[0]
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := load(oneShot)
			if err != nil {
				return output.HandleError(err)
			}
			r.Service = s.svc
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	parent.AddCommand(cmd)
}

func addFolderSecrets(parent *cobra.Command) {
	sc := &folder.Secrets{}

	cmd := &cobra.Command{
		Use:   "secrets <dir|secret>",
		Short: "Print the read-write, read-only and encrypted secrets of a folder.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires a folder path or secret")
			}
			sc.Key = args[0]
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := load(oneShot)
			if err != nil {
				return output.HandleError(err)
			}
			sc.Service = s.svc
			err = sc.Do(context.Background())
			return output.HandleError(err)
		},
	}

	parent.AddCommand(cmd)
}

func addFolderPrefs(parent *cobra.Command) {
	p := &folder.Prefs{}

	cmd := &cobra.Command{
		Use:   "prefs <dir|secret> [name=value...]",
		Short: "Print or change the preferences of a folder.",
		Example: `
syncpanel folder prefs ~/Shared
syncpanel folder prefs ~/Shared use_dht=1 search_lan=0
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a folder path or secret")
			}
			p.Key = args[0]
			p.Set = args[1:]
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := load(oneShot)
			if err != nil {
				return output.HandleError(err)
			}
			p.Service = s.svc
			err = p.Do(context.Background())
			return output.HandleError(err)
		},
	}

	parent.AddCommand(cmd)
}
