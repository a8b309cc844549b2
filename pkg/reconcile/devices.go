package reconcile

import (
	"time"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/events"
	"tableflip.dev/syncpanel/pkg/identity"
	"tableflip.dev/syncpanel/pkg/status"
)

// DeviceRecord is one row of the device table: a peer as seen through one
// folder.
type DeviceRecord struct {
	Name      string
	Folder    string
	Status    string
	Secret    string
	FolderTag string
	PeerID    string
}

func (r DeviceRecord) ref() events.DeviceRef {
	return events.DeviceRef{
		PeerID: r.PeerID,
		Name:   r.Name,
		Folder: events.FolderRef{Path: r.Folder, Secret: r.Secret, Tag: r.FolderTag},
	}
}

// belongsTo reports whether the row is owned by the folder with the given
// secret or tag. An empty tag only matches by secret.
func (r DeviceRecord) belongsTo(secret, tag string) bool {
	return r.Secret == secret || (tag != "" && r.FolderTag == tag)
}

// DeviceChange describes one mutation applied to the device table.
type DeviceChange struct {
	Action events.ChangeType
	Record DeviceRecord
}

// DeviceTable is the ordered device table, keyed by (peer, folder identity).
// The zero value is empty and ready to use.
type DeviceTable struct {
	// Location is the zone used for "Synced on" summaries; nil means local.
	Location *time.Location

	rows []DeviceRecord
}

// Len returns the number of rows.
func (t *DeviceTable) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows in table order.
func (t *DeviceTable) Rows() []DeviceRecord {
	if len(t.rows) == 0 {
		return nil
	}
	return append([]DeviceRecord(nil), t.rows...)
}

// LoadInitial appends a row for every peer of folder.
func (t *DeviceTable) LoadInitial(folder api.Folder, tag string, peers []api.Peer) []DeviceChange {
	changes := make([]DeviceChange, 0, len(peers))
	for _, p := range peers {
		changes = append(changes, t.appendRow(folder, tag, p))
	}
	return changes
}

// SyncForward updates the rows of folder's peers and appends peers not seen
// before.
func (t *DeviceTable) SyncForward(folder api.Folder, tag string, peers []api.Peer) []DeviceChange {
	var changes []DeviceChange
	for _, p := range peers {
		change, matched := t.updateExisting(folder, tag, p)
		if !matched {
			changes = append(changes, t.appendRow(folder, tag, p))
			continue
		}
		if change != nil {
			changes = append(changes, *change)
		}
	}
	return changes
}

// updateExisting refreshes the row for peer p. A (peer, secret) match wins
// over a (peer, tag) match; the latter migrates the stored secret.
func (t *DeviceTable) updateExisting(folder api.Folder, tag string, p api.Peer) (*DeviceChange, bool) {
	name := identity.FixDecode(p.Name)
	summary := status.DeviceSummary(p, t.Location)

	i := t.claim(folder.Secret, tag, p.ID)
	if i < 0 {
		return nil, false
	}

	row := &t.rows[i]
	if row.Name == name && row.Status == summary && row.Secret == folder.Secret {
		return nil, true
	}
	row.Name = name
	row.Status = summary
	row.Secret = folder.Secret
	return &DeviceChange{Action: events.ChangeUpdate, Record: *row}, true
}

func (t *DeviceTable) index(match func(DeviceRecord) bool) int {
	for i, row := range t.rows {
		if match(row) {
			return i
		}
	}
	return -1
}

func (t *DeviceTable) appendRow(folder api.Folder, tag string, p api.Peer) DeviceChange {
	row := DeviceRecord{
		Name:      identity.FixDecode(p.Name),
		Folder:    identity.FixDecode(folder.Dir),
		Status:    status.DeviceSummary(p, t.Location),
		Secret:    folder.Secret,
		FolderTag: tag,
		PeerID:    p.ID,
	}
	t.rows = append(t.rows, row)
	return DeviceChange{Action: events.ChangeCreate, Record: row}
}

// PruneReverse removes rows owned by folder that no listed peer claims. A
// peer claims the row SyncForward refreshes for it, so duplicate rows for
// one (peer, folder) pair are dropped along with departed peers.
func (t *DeviceTable) PruneReverse(folder api.Folder, tag string, peers []api.Peer) []DeviceChange {
	claimed := make(map[int]bool, len(peers))
	for _, p := range peers {
		if i := t.claim(folder.Secret, tag, p.ID); i >= 0 {
			claimed[i] = true
		}
	}
	var changes []DeviceChange
	kept := t.rows[:0]
	for i, row := range t.rows {
		if row.belongsTo(folder.Secret, tag) && !claimed[i] {
			changes = append(changes, DeviceChange{Action: events.ChangeDelete, Record: row})
			continue
		}
		kept = append(kept, row)
	}
	clearTail(t.rows, len(kept))
	t.rows = kept
	return changes
}

// claim returns the row for peer within the folder: a (peer, secret) match
// first, then a (peer, tag) match.
func (t *DeviceTable) claim(secret, tag, peer string) int {
	if i := t.index(func(r DeviceRecord) bool { return r.PeerID == peer && r.Secret == secret }); i >= 0 {
		return i
	}
	return t.index(func(r DeviceRecord) bool { return r.PeerID == peer && r.FolderTag == tag })
}

// removeOrphans drops the rows of a removed folder row. Rows are kept when
// a remaining folder row still holds the same secret or tag.
func (t *DeviceTable) removeOrphans(removed FolderRecord, folders *FolderTable) []DeviceChange {
	secretHeld, tagHeld := folders.holds(removed.Secret, removed.Tag)
	return t.removeWhere(func(r DeviceRecord) bool {
		if !secretHeld && r.Secret == removed.Secret {
			return true
		}
		return !tagHeld && removed.Tag != "" && r.FolderTag == removed.Tag
	})
}

// RemoveFolder removes every row owned by the folder with the given secret,
// or with the given tag when tag is not empty.
func (t *DeviceTable) RemoveFolder(secret, tag string) []DeviceChange {
	return t.removeWhere(func(r DeviceRecord) bool {
		return r.belongsTo(secret, tag)
	})
}

func (t *DeviceTable) removeWhere(drop func(DeviceRecord) bool) []DeviceChange {
	var changes []DeviceChange
	kept := t.rows[:0]
	for _, row := range t.rows {
		if drop(row) {
			changes = append(changes, DeviceChange{Action: events.ChangeDelete, Record: row})
			continue
		}
		kept = append(kept, row)
	}
	clearTail(t.rows, len(kept))
	t.rows = kept
	return changes
}
