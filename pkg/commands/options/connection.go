package options

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/config"
)

// AddConnectionArgs registers the daemon and logging flags on cmd and
// binds them to viper so the config file and environment can fill in
// whatever is not passed.
func AddConnectionArgs(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.String("address", api.DefaultAddress, "Daemon API address, host:port or URL.")
	flags.String("username", "", "Daemon API user.")
	flags.String("password", "", "Daemon API password.")
	flags.Duration("interval", time.Second, "Time between status polls.")
	flags.Duration("timeout", 10*time.Second, "Timeout for a single daemon request.")
	flags.String("log-level", "info", "Log level: debug, info, warn or error.")
	flags.String("log-file", "", "Write logs to this file instead of stderr.")
	flags.String("log-format", "console", "Log encoding: console or json.")
	flags.String("metrics-addr", "", "Serve prometheus metrics on this address.")

	bindFlags(v, flags, map[string]string{
		config.KeyAddress:     "address",
		config.KeyUsername:    "username",
		config.KeyPassword:    "password",
		config.KeyInterval:    "interval",
		config.KeyTimeout:     "timeout",
		config.KeyLogLevel:    "log-level",
		config.KeyLogFile:     "log-file",
		config.KeyLogFormat:   "log-format",
		config.KeyMetricsAddr: "metrics-addr",
	})
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}
