package ui

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"tableflip.dev/syncpanel/pkg/app"
	"tableflip.dev/syncpanel/pkg/events"
	"tableflip.dev/syncpanel/pkg/metrics"
	"tableflip.dev/syncpanel/pkg/tui"
)

// UI runs the panel, the poll loop and the optional metrics endpoint
// together. Quitting the panel stops everything; a fatal polling error
// closes the panel and is returned.
type UI struct {
	Service     *app.Service
	MetricsAddr string
}

func (u *UI) Do(ctx context.Context) error {
	if u.Service == nil {
		return errors.New("ui: no service configured")
	}
	if err := u.Service.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	p := tui.NewProgram(u.Service, u.Service.Engine.Events())

	g.Go(func() error {
		err := u.Service.Run(gctx)
		if err != nil {
			p.Send(events.FatalMsg{Err: err})
		}
		return err
	})
	g.Go(func() error {
		defer cancel()
		final, err := p.Run()
		if err != nil {
			return err
		}
		if m, ok := final.(*tui.Model); ok && m.Err() != nil {
			return m.Err()
		}
		return nil
	})
	if u.MetricsAddr != "" {
		g.Go(func() error {
			err := metrics.Serve(gctx, u.MetricsAddr)
			if err != nil {
				p.Send(events.FatalMsg{Err: err})
			}
			return err
		})
	}
	return g.Wait()
}
