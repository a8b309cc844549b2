package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/logging"
	"tableflip.dev/syncpanel/pkg/metrics"
	"tableflip.dev/syncpanel/pkg/poll"
	"tableflip.dev/syncpanel/pkg/prefs"
	"tableflip.dev/syncpanel/pkg/reconcile"
)

// Client is the daemon API the service drives.
type Client interface {
	reconcile.Client
	prefs.Client
	AddFolder(ctx context.Context, dir, secret string) error
	RemoveFolder(ctx context.Context, secret string) error
	Secrets(ctx context.Context, secret string) (api.Secrets, error)
	FolderPrefs(ctx context.Context, secret string) (api.Prefs, error)
	SetFolderPrefs(ctx context.Context, secret string, values map[string]string) error
	Version(ctx context.Context) (string, error)
}

// Service provides the panel operations. It wires the engine, the poll loop
// and the preference cache around one daemon client so the UI and the CLI
// share logic.
type Service struct {
	Client Client
	Engine *reconcile.Engine
	Loop   *poll.Loop
	Prefs  *prefs.Store
	Fs     afero.Fs

	running atomic.Bool
}

// Option configures a Service.
type Option func(*options)

type options struct {
	interval time.Duration
	location *time.Location
	fs       afero.Fs
}

// WithInterval sets the poll period.
func WithInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithLocation sets the zone used for device summaries.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// WithFs sets the filesystem used to validate folder paths.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// New wires a service around client.
func New(client Client, opts ...Option) *Service {
	o := options{interval: poll.DefaultInterval, fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}

	var engineOpts []reconcile.Option
	if o.location != nil {
		engineOpts = append(engineOpts, reconcile.WithLocation(o.location))
	}
	engine := reconcile.NewEngine(client, engineOpts...)
	// Ticks, the initial load and preference toggles share one guard.
	guard := &poll.Guard{}
	loop := poll.New(engine.Pass, poll.WithInterval(o.interval), poll.WithGuard(guard))

	return &Service{
		Client: client,
		Engine: engine,
		Loop:   loop,
		Prefs:  prefs.New(client, guard),
		Fs:     o.fs,
	}
}

// Start loads the preferences and the initial tables. The table load holds
// the guard like a regular tick.
func (s *Service) Start(ctx context.Context) error {
	if s.Client == nil {
		return errors.New("app: no daemon client configured")
	}
	if err := s.Prefs.Load(ctx); err != nil {
		return err
	}
	guard := s.Loop.Guard()
	if !guard.TryLock() {
		return poll.ErrBusy
	}
	defer guard.Unlock()
	return s.Engine.Load(ctx)
}

// Run drives the poll loop until ctx ends or polling fails for good. While
// Run is active every mutation is executed on the loop.
func (s *Service) Run(ctx context.Context) error {
	s.running.Store(true)
	defer s.running.Store(false)
	return s.Loop.Run(ctx)
}

// Snapshot returns a copy of the current tables.
func (s *Service) Snapshot() reconcile.Snapshot {
	return s.Engine.Snapshot()
}

// Refresh runs one reconciliation pass now.
func (s *Service) Refresh(ctx context.Context) error {
	return s.mutate(ctx, "refresh", func(ctx context.Context) error {
		return s.Loop.Reconcile(ctx)
	})
}

// Trigger asks the running loop for an immediate pass and reports whether
// the request was queued. It does nothing when the loop is not running.
func (s *Service) Trigger() bool {
	if !s.running.Load() {
		return false
	}
	s.Loop.Trigger()
	return true
}

// SetPref validates and stores one daemon preference.
func (s *Service) SetPref(ctx context.Context, name, raw string) error {
	return s.mutate(ctx, "set_pref", func(ctx context.Context) error {
		return s.Prefs.Set(ctx, name, raw)
	})
}

// ToggleLimit turns a rate limit on or off.
func (s *Service) ToggleLimit(ctx context.Context, dir prefs.Direction, enabled bool, rate int64) (bool, error) {
	var sent bool
	err := s.mutate(ctx, "toggle_limit", func(ctx context.Context) error {
		var err error
		sent, err = s.Prefs.ToggleLimit(ctx, dir, enabled, rate)
		return err
	})
	return sent, err
}

// PrefValues returns a copy of the cached daemon preferences.
func (s *Service) PrefValues() api.Prefs {
	return s.Prefs.Values()
}

// Limit returns the local state of a rate limit toggle.
func (s *Service) Limit(dir prefs.Direction) prefs.Limit {
	return s.Prefs.Limit(dir)
}

// Version returns the daemon version.
func (s *Service) Version(ctx context.Context) (string, error) {
	if s.Client == nil {
		return "", errors.New("app: no daemon client configured")
	}
	return s.Client.Version(ctx)
}

// mutate runs fn on the loop when it is running, inline otherwise, and
// records the outcome.
func (s *Service) mutate(ctx context.Context, operation string, fn poll.Task) error {
	if s.Client == nil {
		return errors.New("app: no daemon client configured")
	}
	var err error
	if s.running.Load() {
		err = s.Loop.Do(ctx, fn)
	} else {
		err = fn(ctx)
	}

	result := "ok"
	switch {
	case err == nil:
	case isDomain(err):
		result = "rejected"
	default:
		result = "error"
	}
	metrics.RecordMutation(operation, result)
	if err != nil {
		logging.Warn("operation failed", zap.String("operation", operation), zap.Error(err))
	}
	return err
}

// resync re-reads the daemon right after a mutation. A failure is logged
// only; the mutation itself already succeeded and the next tick retries.
func (s *Service) resync(ctx context.Context) {
	if err := s.Loop.Reconcile(ctx); err != nil {
		logging.Warn("refresh after mutation failed", zap.Error(err))
	}
}

func isDomain(err error) bool {
	_, ok := api.AsDomain(err)
	return ok
}
