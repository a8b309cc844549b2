// Package tui hosts the Bubble Tea status panel.
package tui

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/events"
	"tableflip.dev/syncpanel/pkg/prefs"
	"tableflip.dev/syncpanel/pkg/reconcile"
	"tableflip.dev/syncpanel/pkg/tui/theme"
)

// Backend is what the panel needs from the application service.
type Backend interface {
	Snapshot() reconcile.Snapshot
	PrefValues() api.Prefs
	Limit(dir prefs.Direction) prefs.Limit
	Refresh(ctx context.Context) error
	Trigger() bool
	AddFolder(ctx context.Context, dir, secret string) (string, error)
	RemoveFolder(ctx context.Context, key string) error
	Secrets(ctx context.Context, key string) (api.Secrets, error)
	SetPref(ctx context.Context, name, raw string) error
	ToggleLimit(ctx context.Context, dir prefs.Direction, enabled bool, rate int64) (bool, error)
}

type tab int

const (
	tabFolders tab = iota
	tabDevices
	tabPrefs
)

var tabNames = []string{"Folders", "Devices", "Preferences"}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeConfirmRemove
	modeEditPref
)

// actionTimeout bounds one user action against the daemon.
const actionTimeout = 30 * time.Second

// Model is the root panel model.
type Model struct {
	backend Backend
	events  <-chan tea.Msg
	theme   theme.Theme

	width  int
	height int

	tab    tab
	cursor int
	offset int

	folders   []reconcile.FolderRecord
	devices   []reconcile.DeviceRecord
	prefNames []string
	prefs     api.Prefs
	transfer  string

	mode    mode
	input   textinput.Model
	target  string
	status  string
	failure string
	fatal   error
}

// New builds the panel. updates is the engine event channel; it may be nil.
func New(backend Backend, updates <-chan tea.Msg) *Model {
	input := textinput.New()
	input.Prompt = ""
	input.Focus()
	input.Blur()

	return &Model{
		backend:  backend,
		events:   updates,
		theme:    theme.Default(),
		input:    input,
		transfer: "waiting for the daemon...",
		status:   "Ready",
	}
}

// NewProgram wraps the panel into a full-screen Bubble Tea program.
func NewProgram(backend Backend, updates <-chan tea.Msg) *tea.Program {
	return tea.NewProgram(New(backend, updates), tea.WithAltScreen())
}

// Err returns the fatal error that closed the panel, if any.
func (m *Model) Err() error {
	return m.fatal
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.refresh()
	return m.wait()
}

func (m *Model) wait() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return events.WaitCmd(m.events)
}

// refresh copies the backend state into the model.
func (m *Model) refresh() {
	if m.backend == nil {
		return
	}
	snap := m.backend.Snapshot()
	m.folders = snap.Folders
	m.devices = snap.Devices

	m.prefs = m.backend.PrefValues()
	m.prefNames = m.prefNames[:0]
	for name := range m.prefs {
		m.prefNames = append(m.prefNames, name)
	}
	sort.Strings(m.prefNames)
	m.clampCursor()
}

func (m *Model) rows() int {
	switch m.tab {
	case tabDevices:
		return len(m.devices)
	case tabPrefs:
		return len(m.prefNames)
	default:
		return len(m.folders)
	}
}

func (m *Model) clampCursor() {
	n := m.rows()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selectedFolder() (reconcile.FolderRecord, bool) {
	if m.tab != tabFolders || m.cursor >= len(m.folders) {
		return reconcile.FolderRecord{}, false
	}
	return m.folders[m.cursor], true
}

func (m *Model) selectedPref() (string, bool) {
	if m.tab != tabPrefs || m.cursor >= len(m.prefNames) {
		return "", false
	}
	return m.prefNames[m.cursor], true
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failure = ""
}

func (m *Model) setFailure(err error) {
	m.failure = err.Error()
	if de, ok := api.AsDomain(err); ok {
		m.failure = de.Error()
	}
}

func (m *Model) beginInput(md mode, placeholder, value string) tea.Cmd {
	m.mode = md
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) endInput() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.SetValue("")
	m.target = ""
}

func splitAddArgs(raw string) (dir, secret string) {
	raw = strings.TrimSpace(raw)
	if i := strings.LastIndex(raw, " "); i > 0 {
		candidate := strings.TrimSpace(raw[i+1:])
		if candidate != "" && strings.ToUpper(candidate) == candidate && len(candidate) >= 20 {
			return strings.TrimSpace(raw[:i]), candidate
		}
	}
	return raw, ""
}
