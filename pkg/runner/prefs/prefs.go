package prefs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/syncpanel/pkg/app"
	"tableflip.dev/syncpanel/pkg/printers"
	panelprefs "tableflip.dev/syncpanel/pkg/prefs"
)

// Prefs lists daemon preferences. Arguments of the form name print one
// value; name=value sets it.
type Prefs struct {
	Service *app.Service
	Args    []string
	Out     io.Writer
}

func (p *Prefs) Do(ctx context.Context) error {
	if p.Service == nil {
		return errors.New("prefs: no service configured")
	}
	out := p.Out
	if out == nil {
		out = color.Output
	}
	if err := p.Service.Prefs.Load(ctx); err != nil {
		return err
	}

	if len(p.Args) == 0 {
		pp := printers.PrettyPrint{Out: out}
		pp.Prefs("Preferences", p.Service.PrefValues())
		return nil
	}

	for _, arg := range p.Args {
		name, value, set := strings.Cut(arg, "=")
		if set {
			if err := p.Service.SetPref(ctx, name, value); err != nil {
				return err
			}
		}
		current, ok := p.Service.Prefs.Get(name)
		if !ok {
			return fmt.Errorf("prefs: unknown preference %q", name)
		}
		_, _ = fmt.Fprintf(out, "%s=%s\n", name, current)
	}
	return nil
}

// Limit switches a transfer limit on with a rate in kB/s, or off.
type Limit struct {
	Service   *app.Service
	Direction string
	Value     string
	Out       io.Writer
}

func (l *Limit) Do(ctx context.Context) error {
	if l.Service == nil {
		return errors.New("prefs: no service configured")
	}
	dir, err := panelprefs.ParseDirection(l.Direction)
	if err != nil {
		return err
	}
	enabled := true
	var rate int64
	switch v := strings.ToLower(strings.TrimSpace(l.Value)); v {
	case "off", "0", "none":
		enabled = false
	case "on", "":
	default:
		if rate, err = strconv.ParseInt(v, 10, 64); err != nil || rate <= 0 {
			return fmt.Errorf("prefs: limit must be a positive rate, on or off, got %q", l.Value)
		}
	}

	if err := l.Service.Prefs.Load(ctx); err != nil {
		return err
	}
	if _, err := l.Service.ToggleLimit(ctx, dir, enabled, rate); err != nil {
		return err
	}
	out := l.Out
	if out == nil {
		out = color.Output
	}
	limit := l.Service.Limit(dir)
	if limit.Enabled {
		_, _ = fmt.Fprintf(out, "%s limit %d kB/s\n", dir, limit.Rate)
	} else {
		_, _ = fmt.Fprintf(out, "%s limit off\n", dir)
	}
	return nil
}
