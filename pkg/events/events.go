// Package events defines the typed messages the reconciliation engine emits
// when its tables change. They double as Bubble Tea messages.
package events

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// ChangeType enumerates supported change actions.
type ChangeType string

const (
	// ChangeCreate indicates a new row was appended.
	ChangeCreate ChangeType = "create"
	// ChangeUpdate indicates an existing row changed.
	ChangeUpdate ChangeType = "update"
	// ChangeDelete indicates a row was removed.
	ChangeDelete ChangeType = "delete"
)

// FolderRef identifies a folder row in events.
type FolderRef struct {
	Path   string
	Secret string
	Tag    string
}

// FolderChangeMsg announces a change of the folder table.
type FolderChangeMsg struct {
	Action  ChangeType
	Current FolderRef
	// PreviousSecret is set when an update migrated the secret.
	PreviousSecret string
	Content        string
}

// Describe renders the change for logs.
func (m FolderChangeMsg) Describe() string {
	return fmt.Sprintf(`action:%q folder:%q content:%q rotated:%t`, m.Action, m.Current.Path, m.Content, m.PreviousSecret != "")
}

// DeviceRef identifies a device row in events.
type DeviceRef struct {
	PeerID string
	Name   string
	Folder FolderRef
}

// DeviceChangeMsg announces a change of the device table.
type DeviceChangeMsg struct {
	Action  ChangeType
	Current DeviceRef
	Status  string
}

// Describe renders the change for logs.
func (m DeviceChangeMsg) Describe() string {
	return fmt.Sprintf(`action:%q device:%q folder:%q status:%q`, m.Action, m.Current.Name, m.Current.Folder.Path, m.Status)
}

// TransferMsg carries the transfer summary label refreshed on each pass.
type TransferMsg struct {
	Upload   float64
	Download float64
	Label    string
}

// Describe renders the transfer summary for logs.
func (m TransferMsg) Describe() string {
	return m.Label
}

// PassMsg is emitted after every completed reconciliation pass.
type PassMsg struct {
	Folders int
	Devices int
	Changes int
}

// Describe renders the pass summary for logs.
func (m PassMsg) Describe() string {
	return fmt.Sprintf(`folders:%d devices:%d changes:%d`, m.Folders, m.Devices, m.Changes)
}

// FatalMsg reports that polling stopped for good.
type FatalMsg struct {
	Err error
}

// Describe renders the failure for logs.
func (m FatalMsg) Describe() string {
	return fmt.Sprintf(`error:%q`, m.Err)
}

// Describer is implemented by every message in this package.
type Describer interface {
	Describe() string
}

// WaitCmd returns a tea.Cmd that blocks until the next message arrives on ch.
// It yields nil once ch is closed.
func WaitCmd(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
