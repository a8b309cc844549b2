package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/syncpanel/pkg/events"
	"tableflip.dev/syncpanel/pkg/prefs"
)

// actionDoneMsg reports the outcome of a user action.
type actionDoneMsg struct {
	status string
	err    error
}

func (m *Model) action(run func(ctx context.Context) (string, error)) tea.Cmd {
	if m.backend == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		status, err := run(ctx)
		return actionDoneMsg{status: status, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		return m, nil

	case tea.KeyMsg:
		if v.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode != modeBrowse {
			return m, m.handleInput(v)
		}
		return m, m.handleKey(v)

	case events.PassMsg:
		m.refresh()
		return m, m.wait()

	case events.TransferMsg:
		m.transfer = v.Label
		return m, m.wait()

	case events.FolderChangeMsg, events.DeviceChangeMsg:
		return m, m.wait()

	case events.FatalMsg:
		m.fatal = v.Err
		return m, tea.Quit

	case actionDoneMsg:
		if v.err != nil {
			m.setFailure(v.err)
		} else {
			m.setStatus(v.status)
		}
		m.refresh()
		return m, nil
	}

	if m.mode == modeAdd || m.mode == modeEditPref {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "tab", "right", "l":
		m.switchTab((m.tab + 1) % tab(len(tabNames)))
	case "shift+tab", "left", "h":
		m.switchTab((m.tab + tab(len(tabNames)) - 1) % tab(len(tabNames)))
	case "1":
		m.switchTab(tabFolders)
	case "2":
		m.switchTab(tabDevices)
	case "3":
		m.switchTab(tabPrefs)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
	case "r":
		m.setStatus("Refreshing...")
		if m.backend.Trigger() {
			// The next PassMsg redraws the tables.
			return nil
		}
		return m.action(func(ctx context.Context) (string, error) {
			return "Refreshed", m.backend.Refresh(ctx)
		})
	case "a":
		m.switchTab(tabFolders)
		return m.beginInput(modeAdd, "path [secret]", "")
	case "d", "delete":
		if f, ok := m.selectedFolder(); ok {
			m.mode = modeConfirmRemove
			m.target = f.Secret
			m.setStatus(fmt.Sprintf("Stop syncing %s? (y/n)", f.Path))
		}
	case "s":
		if f, ok := m.selectedFolder(); ok {
			return m.action(func(ctx context.Context) (string, error) {
				secrets, err := m.backend.Secrets(ctx, f.Secret)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%s read-only: %s", f.Path, secrets.ReadOnly), nil
			})
		}
	case "enter", "e":
		if name, ok := m.selectedPref(); ok {
			m.target = name
			return m.beginInput(modeEditPref, name, m.prefs.String(name))
		}
	case "U":
		return m.toggleLimit(prefs.Upload)
	case "D":
		return m.toggleLimit(prefs.Download)
	}
	return nil
}

func (m *Model) handleInput(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "esc" {
		m.endInput()
		m.setStatus("Cancelled")
		return nil
	}

	switch m.mode {
	case modeConfirmRemove:
		secret := m.target
		m.endInput()
		if key != "y" && key != "Y" {
			m.setStatus("Cancelled")
			return nil
		}
		m.setStatus("Removing...")
		return m.action(func(ctx context.Context) (string, error) {
			return "Folder removed", m.backend.RemoveFolder(ctx, secret)
		})

	case modeAdd:
		if key != "enter" {
			break
		}
		dir, secret := splitAddArgs(m.input.Value())
		m.endInput()
		if dir == "" {
			m.setStatus("Cancelled")
			return nil
		}
		m.setStatus("Adding " + dir + "...")
		return m.action(func(ctx context.Context) (string, error) {
			if _, err := m.backend.AddFolder(ctx, dir, secret); err != nil {
				return "", err
			}
			return "Added " + dir, nil
		})

	case modeEditPref:
		if key != "enter" {
			break
		}
		name, value := m.target, m.input.Value()
		m.endInput()
		return m.action(func(ctx context.Context) (string, error) {
			return "Saved " + name, m.backend.SetPref(ctx, name, value)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) toggleLimit(dir prefs.Direction) tea.Cmd {
	if m.backend == nil {
		return nil
	}
	enabled := !m.backend.Limit(dir).Enabled
	return m.action(func(ctx context.Context) (string, error) {
		sent, err := m.backend.ToggleLimit(ctx, dir, enabled, 0)
		if err != nil {
			return "", err
		}
		state := "off"
		if enabled {
			state = "on"
		}
		if !sent {
			return fmt.Sprintf("%s limit %s (not sent, busy)", dir, state), nil
		}
		return fmt.Sprintf("%s limit %s", dir, state), nil
	})
}

func (m *Model) switchTab(t tab) {
	if m.tab == t {
		return
	}
	m.tab = t
	m.cursor = 0
	m.offset = 0
}
