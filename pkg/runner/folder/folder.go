package folder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/syncpanel/pkg/app"
	"tableflip.dev/syncpanel/pkg/printers"
)

var errNoService = errors.New("folder: no service configured")

func output(w io.Writer) io.Writer {
	if w == nil {
		return color.Output
	}
	return w
}

type Add struct {
	Service *app.Service
	Dir     string
	Secret  string
	Out     io.Writer
}

func (a *Add) Do(ctx context.Context) error {
	if a.Service == nil {
		return errNoService
	}
	secret, err := a.Service.AddFolder(ctx, a.Dir, a.Secret)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(output(a.Out), "syncing %s\n", a.Dir)
	if a.Secret == "" {
		_, _ = fmt.Fprintf(output(a.Out), "secret: %s\n", secret)
	}
	return nil
}

type Remove struct {
	Service *app.Service
	Key     string
	Out     io.Writer
}

func (r *Remove) Do(ctx context.Context) error {
	if r.Service == nil {
		return errNoService
	}
	if err := r.Service.RemoveFolder(ctx, r.Key); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(output(r.Out), "stopped syncing %s\n", r.Key)
	return nil
}

type Secrets struct {
	Service *app.Service
	Key     string
	Out     io.Writer
}

func (s *Secrets) Do(ctx context.Context) error {
	if s.Service == nil {
		return errNoService
	}
	secrets, err := s.Service.Secrets(ctx, s.Key)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: output(s.Out)}
	pp.Secrets(s.Key, secrets)
	return nil
}

// Prefs prints the preferences of a folder, or sets the given name=value
// pairs first.
type Prefs struct {
	Service *app.Service
	Key     string
	Set     []string
	Out     io.Writer
}

func (p *Prefs) Do(ctx context.Context) error {
	if p.Service == nil {
		return errNoService
	}
	for _, kv := range p.Set {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("folder: expected name=value, got %q", kv)
		}
		if err := p.Service.SetFolderPref(ctx, p.Key, name, value); err != nil {
			return err
		}
	}
	values, err := p.Service.FolderPrefs(ctx, p.Key)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: output(p.Out)}
	pp.Prefs(p.Key, values)
	return nil
}
