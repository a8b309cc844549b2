// Package prefs caches the daemon preferences and applies edits to them.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/logging"
	"tableflip.dev/syncpanel/pkg/poll"
)

// Client is the part of the daemon API preferences need.
type Client interface {
	Prefs(ctx context.Context) (api.Prefs, error)
	SetPrefs(ctx context.Context, values map[string]string) error
}

// Direction selects one of the two transfer rate limits.
type Direction string

const (
	// Download limits incoming transfers.
	Download Direction = "download"
	// Upload limits outgoing transfers.
	Upload Direction = "upload"
)

// Pref returns the preference holding the limit.
func (d Direction) Pref() string {
	return string(d) + "_limit"
}

// ParseDirection accepts "up", "upload", "down" and "download".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "upload":
		return Upload, nil
	case "down", "download":
		return Download, nil
	}
	return "", fmt.Errorf("prefs: unknown direction %q, want up or down", s)
}

// Limit is the local state of a rate limit toggle.
type Limit struct {
	Enabled bool
	Rate    int64
}

// Store is the preference cache.
type Store struct {
	client Client
	guard  *poll.Guard

	mu     sync.RWMutex
	values api.Prefs
	limits map[Direction]Limit
}

// New creates an empty store. guard is shared with the poll loop; a nil
// guard gets a private one.
func New(client Client, guard *poll.Guard) *Store {
	if guard == nil {
		guard = &poll.Guard{}
	}
	return &Store{
		client: client,
		guard:  guard,
		values: api.Prefs{},
		limits: map[Direction]Limit{},
	}
}

// Load reads the daemon preferences into the cache. The guard is held while
// the limit toggles are derived from the loaded values.
func (s *Store) Load(ctx context.Context) error {
	if !s.guard.TryLock() {
		return poll.ErrBusy
	}
	defer s.guard.Unlock()

	values, err := s.client.Prefs(ctx)
	if err != nil {
		return fmt.Errorf("prefs: load: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
	for _, dir := range []Direction{Download, Upload} {
		rate := values.Int(dir.Pref())
		limit := s.limits[dir]
		limit.Enabled = rate > 0
		if rate > 0 {
			limit.Rate = rate
		}
		s.limits[dir] = limit
	}
	logging.Debug("preferences loaded", zap.Int("count", len(values)))
	return nil
}

// Values returns a copy of the cached preferences.
func (s *Store) Values() api.Prefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(api.Prefs, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Get returns the textual value of one cached preference.
func (s *Store) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.values[name]; !ok {
		return "", false
	}
	return s.values.String(name), true
}

// Set validates raw, sends it to the daemon and updates the cache.
func (s *Store) Set(ctx context.Context, name, raw string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("prefs: empty preference name")
	}
	d := Lookup(name)
	wire, err := d.Parse(raw)
	if err != nil {
		return err
	}
	if err := s.client.SetPrefs(ctx, map[string]string{name: wire}); err != nil {
		return fmt.Errorf("prefs: set %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = d.cacheValue(wire)
	if dir, ok := limitDirection(name); ok {
		rate := s.values.Int(name)
		limit := Limit{Enabled: rate > 0, Rate: s.limits[dir].Rate}
		if rate > 0 {
			limit.Rate = rate
		}
		s.limits[dir] = limit
	}
	logging.Info("preference updated", zap.String("name", name), zap.String("value", wire))
	return nil
}

// Limit returns the local toggle state of a rate limit.
func (s *Store) Limit(dir Direction) Limit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits[dir]
}

// ToggleLimit turns a rate limit on or off. While the guard is held only the
// local toggle state changes and nothing is sent; sent reports whether the
// daemon was updated. A rate of 0 reuses the last known rate.
func (s *Store) ToggleLimit(ctx context.Context, dir Direction, enabled bool, rate int64) (sent bool, err error) {
	if rate < 0 {
		return false, fmt.Errorf("prefs: %s: negative rate %d", dir.Pref(), rate)
	}

	s.mu.Lock()
	limit := s.limits[dir]
	limit.Enabled = enabled
	if rate > 0 {
		limit.Rate = rate
	}
	s.limits[dir] = limit
	s.mu.Unlock()

	if s.guard.Locked() {
		return false, nil
	}

	send := int64(0)
	if enabled {
		if limit.Rate == 0 {
			return false, fmt.Errorf("prefs: %s: a rate is required to enable the limit", dir.Pref())
		}
		send = limit.Rate
	}
	if err := s.Set(ctx, dir.Pref(), fmt.Sprint(send)); err != nil {
		return false, err
	}
	return true, nil
}

func limitDirection(name string) (Direction, bool) {
	for _, dir := range []Direction{Download, Upload} {
		if dir.Pref() == name {
			return dir, true
		}
	}
	return "", false
}
