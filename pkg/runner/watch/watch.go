package watch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/syncpanel/pkg/app"
	"tableflip.dev/syncpanel/pkg/events"
	"tableflip.dev/syncpanel/pkg/metrics"
	"tableflip.dev/syncpanel/pkg/printers"
)

// Watch polls the daemon and prints one line per pass until interrupted
// or until polling fails.
type Watch struct {
	Service     *app.Service
	MetricsAddr string
	Out         io.Writer
}

func (w *Watch) Do(ctx context.Context) error {
	if w.Service == nil {
		return fmt.Errorf("watch: no service configured")
	}
	out := w.Out
	if out == nil {
		out = color.Output
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			color.NoColor = true
		}
	}
	pp := printers.PrettyPrint{Out: out}

	if err := w.Service.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return w.Service.Run(gctx)
	})
	if w.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, w.MetricsAddr)
		})
	}
	g.Go(func() error {
		var folders, devices int
		updates := w.Service.Engine.Events()
		for {
			select {
			case <-gctx.Done():
				return nil
			case msg := <-updates:
				switch m := msg.(type) {
				case events.PassMsg:
					folders, devices = m.Folders, m.Devices
				case events.TransferMsg:
					pp.Transfer(folders, devices, m.Label)
				case events.FolderChangeMsg:
					_, _ = fmt.Fprintf(out, "  folder %s\n", m.Describe())
				}
			}
		}
	})
	return g.Wait()
}
