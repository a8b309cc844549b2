package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/syncpanel/pkg/app"
	"tableflip.dev/syncpanel/pkg/config"
	"tableflip.dev/syncpanel/pkg/printers"
)

type Info struct {
	Config     *config.Config
	ConfigFile string
	Service    *app.Service
	Out        io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}

	if override := os.Getenv(config.EnvPrefix + "_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(out, config.EnvPrefix+"_CONFIG_PATH found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(out, config.EnvPrefix+"_CONFIG_PATH env var not set")
	}
	if n.ConfigFile != "" {
		_, _ = fmt.Fprintln(out, "Config file:", n.ConfigFile)
	} else {
		_, _ = fmt.Fprintln(out, "Config file: none")
	}

	if n.Config == nil || n.Service == nil {
		return fmt.Errorf("info: missing configuration")
	}

	version, err := n.Service.Version(ctx)
	if err != nil {
		return fmt.Errorf("info: daemon at %s: %w", n.Config.Address, err)
	}
	pp := printers.PrettyPrint{Out: out}
	pp.Info(n.Config.Address, version, n.Config.Interval)
	return nil
}
