package status

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/syncpanel/pkg/app"
	"tableflip.dev/syncpanel/pkg/printers"
)

type Status struct {
	Service *app.Service
	JSON    bool
	Devices bool
	Secrets bool
	Out     io.Writer
}

func (s *Status) Do(ctx context.Context) error {
	if s.Service == nil {
		return fmt.Errorf("status: no service configured")
	}
	out := s.Out
	if out == nil {
		out = color.Output
	}

	report, err := s.Service.Report(ctx, s.Secrets)
	if err != nil {
		return err
	}

	if s.JSON {
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, string(b))
		return nil
	}

	pp := printers.PrettyPrint{Out: out, ShowDevices: s.Devices, ShowSecrets: s.Secrets}
	pp.Report(report)
	return nil
}
