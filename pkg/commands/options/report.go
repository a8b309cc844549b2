package options

import (
	"github.com/spf13/cobra"
)

// ReportOptions
type ReportOptions struct {
	Devices bool
	Secrets bool
}

func AddReportArgs(cmd *cobra.Command, o *ReportOptions) {
	cmd.Flags().BoolVarP(&o.Devices, "devices", "d", false,
		"Include the device table.")
	cmd.Flags().BoolVar(&o.Secrets, "secrets", false,
		"Show folder secrets.")
}
