// Package reconcile keeps a local view of the daemon's folders and devices
// consistent with the daemon, one incremental pass at a time.
//
// The Engine mirrors an informer cache: state lives locally in two ordered
// tables, every pass diffs the daemon's answer into them in place, and
// consumers read copies through Snapshot or follow typed change events.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"go.uber.org/zap"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/events"
	"tableflip.dev/syncpanel/pkg/logging"
	"tableflip.dev/syncpanel/pkg/metrics"
	"tableflip.dev/syncpanel/pkg/status"
)

// Client is the part of the daemon API a reconciliation pass needs.
type Client interface {
	Folders(ctx context.Context) ([]api.Folder, error)
	FolderPeers(ctx context.Context, secret string) ([]api.Peer, error)
	Speed(ctx context.Context) (api.Speed, error)
}

// Snapshot is a copy of the engine state. Callers own it.
type Snapshot struct {
	Folders  []FolderRecord
	Devices  []DeviceRecord
	Transfer status.Transfer
	Loaded   bool
}

// Folder finds a folder by secret, display path or identity tag.
func (s Snapshot) Folder(key string) (FolderRecord, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return FolderRecord{}, false
	}
	for _, f := range s.Folders {
		if f.Secret == key || f.Path == key || f.Tag == key {
			return f, true
		}
	}
	return FolderRecord{}, false
}

// DevicesOf returns the device rows owned by folder.
func (s Snapshot) DevicesOf(folder FolderRecord) []DeviceRecord {
	var out []DeviceRecord
	for _, d := range s.Devices {
		if d.belongsTo(folder.Secret, folder.Tag) {
			out = append(out, d)
		}
	}
	return out
}

// Engine owns the folder and device tables.
type Engine struct {
	client Client

	mu       sync.RWMutex
	folders  FolderTable
	devices  DeviceTable
	transfer status.Transfer
	loaded   bool

	eventCh chan tea.Msg
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the zone used for device "Synced on" summaries.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		e.devices.Location = loc
	}
}

// withEventBuffer sets the size of the event channel buffer.
func withEventBuffer(n int) Option {
	return func(e *Engine) {
		e.eventCh = make(chan tea.Msg, n)
	}
}

// NewEngine creates an engine with empty tables.
func NewEngine(client Client, opts ...Option) *Engine {
	e := &Engine{
		client:  client,
		eventCh: make(chan tea.Msg, 256),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Events exposes the change event channel. Events are dropped when the
// consumer falls behind; Snapshot stays authoritative.
func (e *Engine) Events() <-chan tea.Msg {
	return e.eventCh
}

// Snapshot returns a copy of the current tables.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Snapshot{
		Folders:  e.folders.Rows(),
		Devices:  e.devices.Rows(),
		Transfer: e.transfer,
		Loaded:   e.loaded,
	}
}

// fetched is everything one pass reads from the daemon, gathered before any
// table is touched.
type fetched struct {
	folders []tagged
	peers   [][]api.Peer
	speed   api.Speed
}

func (e *Engine) fetch(ctx context.Context, withSpeed bool) (*fetched, error) {
	if e.client == nil {
		return nil, errors.New("reconcile: no daemon client configured")
	}
	folders, err := e.client.Folders(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile: list folders: %w", err)
	}
	out := &fetched{
		folders: tagFolders(folders),
		peers:   make([][]api.Peer, len(folders)),
	}
	for i, f := range folders {
		peers, err := e.client.FolderPeers(ctx, f.Secret)
		if err != nil {
			return nil, fmt.Errorf("reconcile: list peers of %q: %w", f.Dir, err)
		}
		out.peers[i] = peers
	}
	if withSpeed {
		if out.speed, err = e.client.Speed(ctx); err != nil {
			return nil, fmt.Errorf("reconcile: read speed: %w", err)
		}
	}
	return out, nil
}

// Load performs the initial full fetch and appends every folder and peer.
// Loading an already loaded engine falls back to a regular pass.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.RLock()
	loaded := e.loaded
	e.mu.RUnlock()
	if loaded {
		return e.Pass(ctx)
	}

	start := time.Now()
	data, err := e.fetch(ctx, false)
	if err != nil {
		metrics.RecordPass("error", time.Since(start))
		return err
	}

	e.mu.Lock()
	folderChanges := e.folders.loadInitial(data.folders)
	var deviceChanges []DeviceChange
	for i, f := range data.folders {
		deviceChanges = append(deviceChanges, e.devices.LoadInitial(f.Folder, f.tag, data.peers[i])...)
	}
	e.loaded = true
	nFolders, nDevices := e.folders.Len(), e.devices.Len()
	e.mu.Unlock()

	e.publish(folderChanges, deviceChanges, nFolders, nDevices)
	metrics.RecordPass("ok", time.Since(start))
	logging.Info("initial load complete", zap.Int("folders", nFolders), zap.Int("devices", nDevices))
	return nil
}

// Pass runs one reconciliation pass: folders forward and reverse (with the
// device cascade), devices forward and reverse per folder, then the transfer
// summary. Any daemon error aborts the pass before the tables change.
func (e *Engine) Pass(ctx context.Context) error {
	start := time.Now()
	data, err := e.fetch(ctx, true)
	if err != nil {
		metrics.RecordPass("error", time.Since(start))
		return err
	}

	e.mu.Lock()
	folderChanges := e.folders.syncForward(data.folders)
	removed := e.folders.pruneReverse(data.folders)
	folderChanges = append(folderChanges, removed...)

	var deviceChanges []DeviceChange
	for _, r := range removed {
		deviceChanges = append(deviceChanges, e.devices.removeOrphans(r.Record, &e.folders)...)
	}
	for i, f := range data.folders {
		deviceChanges = append(deviceChanges, e.devices.SyncForward(f.Folder, f.tag, data.peers[i])...)
		deviceChanges = append(deviceChanges, e.devices.PruneReverse(f.Folder, f.tag, data.peers[i])...)
	}
	e.transfer = status.Transfer{Upload: data.speed.Upload, Download: data.speed.Download}
	e.loaded = true
	transfer := e.transfer
	nFolders, nDevices := e.folders.Len(), e.devices.Len()
	e.mu.Unlock()

	e.publish(folderChanges, deviceChanges, nFolders, nDevices)
	metrics.SetTransfer(transfer.Upload, transfer.Download)
	e.emit(events.TransferMsg{
		Upload:   transfer.Upload,
		Download: transfer.Download,
		Label:    status.TransferLabel(transfer),
	})
	metrics.RecordPass("ok", time.Since(start))
	return nil
}

// ForgetFolder drops the folder row holding secret together with every
// device row owned by it. It reports whether a row was removed.
func (e *Engine) ForgetFolder(secret string) bool {
	e.mu.Lock()
	row, ok := e.folders.Remove(secret)
	var deviceChanges []DeviceChange
	if ok {
		deviceChanges = e.devices.RemoveFolder(row.Secret, row.Tag)
	}
	nFolders, nDevices := e.folders.Len(), e.devices.Len()
	e.mu.Unlock()

	if !ok {
		return false
	}
	e.publish([]FolderChange{{Action: events.ChangeDelete, Record: row}}, deviceChanges, nFolders, nDevices)
	return true
}

func (e *Engine) publish(folderChanges []FolderChange, deviceChanges []DeviceChange, nFolders, nDevices int) {
	for _, c := range folderChanges {
		msg := events.FolderChangeMsg{
			Action:         c.Action,
			Current:        c.Record.ref(),
			PreviousSecret: c.PreviousSecret,
			Content:        c.Record.Content,
		}
		metrics.RecordChange("folders", string(c.Action))
		logging.Debug("folder change", zap.String("change", msg.Describe()))
		e.emit(msg)
	}
	for _, c := range deviceChanges {
		msg := events.DeviceChangeMsg{
			Action:  c.Action,
			Current: c.Record.ref(),
			Status:  c.Record.Status,
		}
		metrics.RecordChange("devices", string(c.Action))
		logging.Debug("device change", zap.String("change", msg.Describe()))
		e.emit(msg)
	}
	metrics.SetRows(nFolders, nDevices)
	e.emit(events.PassMsg{
		Folders: nFolders,
		Devices: nDevices,
		Changes: len(folderChanges) + len(deviceChanges),
	})
}

func (e *Engine) emit(msg tea.Msg) {
	select {
	case e.eventCh <- msg:
	default:
	}
}
