package reconcile

import (
	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/events"
	"tableflip.dev/syncpanel/pkg/identity"
	"tableflip.dev/syncpanel/pkg/status"
)

// FolderRecord is one row of the folder table.
type FolderRecord struct {
	Path    string
	Content string
	Secret  string
	Tag     string
}

func (r FolderRecord) ref() events.FolderRef {
	return events.FolderRef{Path: r.Path, Secret: r.Secret, Tag: r.Tag}
}

// FolderChange describes one mutation applied to the folder table.
type FolderChange struct {
	Action         events.ChangeType
	Record         FolderRecord
	PreviousSecret string
}

// tagged pairs a fetched folder with the identity tag of its raw path.
type tagged struct {
	api.Folder
	tag string
}

func tagFolders(fetched []api.Folder) []tagged {
	out := make([]tagged, len(fetched))
	for i, f := range fetched {
		out[i] = tagged{Folder: f, tag: identity.Tag(f.Dir)}
	}
	return out
}

// FolderTable is the ordered folder table. The zero value is empty and ready
// to use. It is not safe for concurrent use; the Engine serializes access.
type FolderTable struct {
	rows []FolderRecord
}

// Len returns the number of rows.
func (t *FolderTable) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows in table order.
func (t *FolderTable) Rows() []FolderRecord {
	if len(t.rows) == 0 {
		return nil
	}
	return append([]FolderRecord(nil), t.rows...)
}

// LoadInitial appends every fetched folder without matching.
func (t *FolderTable) LoadInitial(fetched []api.Folder) []FolderChange {
	return t.loadInitial(tagFolders(fetched))
}

func (t *FolderTable) loadInitial(fetched []tagged) []FolderChange {
	changes := make([]FolderChange, 0, len(fetched))
	for _, f := range fetched {
		changes = append(changes, t.appendRow(f))
	}
	return changes
}

// SyncForward updates rows matching a fetched folder and appends the
// folders that match no row.
func (t *FolderTable) SyncForward(fetched []api.Folder) []FolderChange {
	return t.syncForward(tagFolders(fetched))
}

func (t *FolderTable) syncForward(fetched []tagged) []FolderChange {
	var changes []FolderChange
	for _, f := range fetched {
		change, matched := t.updateExisting(f)
		if !matched {
			changes = append(changes, t.appendRow(f))
			continue
		}
		if change != nil {
			changes = append(changes, *change)
		}
	}
	return changes
}

// updateExisting refreshes the row matching f. A secret match wins over a
// match on the row's stored tag. The change is nil when nothing differed.
func (t *FolderTable) updateExisting(f tagged) (*FolderChange, bool) {
	content := status.FolderSummary(f.Folder)
	if i := t.indexBySecret(f.Secret); i >= 0 {
		row := &t.rows[i]
		if row.Content == content {
			return nil, true
		}
		row.Content = content
		return &FolderChange{Action: events.ChangeUpdate, Record: *row}, true
	}
	if i := t.indexByTag(f.tag); i >= 0 {
		row := &t.rows[i]
		previous := row.Secret
		row.Content = content
		row.Secret = f.Secret
		return &FolderChange{Action: events.ChangeUpdate, Record: *row, PreviousSecret: previous}, true
	}
	return nil, false
}

func (t *FolderTable) indexBySecret(secret string) int {
	for i, row := range t.rows {
		if row.Secret == secret {
			return i
		}
	}
	return -1
}

func (t *FolderTable) indexByTag(tag string) int {
	for i, row := range t.rows {
		if row.Tag == tag {
			return i
		}
	}
	return -1
}

func (t *FolderTable) appendRow(f tagged) FolderChange {
	row := FolderRecord{
		Path:    identity.FixDecode(f.Dir),
		Content: status.FolderSummary(f.Folder),
		Secret:  f.Secret,
		Tag:     f.tag,
	}
	t.rows = append(t.rows, row)
	return FolderChange{Action: events.ChangeCreate, Record: row}
}

// PruneReverse removes every row not claimed by a fetched folder and
// returns the removed rows as delete changes. Each fetched folder claims one
// row, the same one SyncForward refreshes, so duplicate rows for a folder
// are dropped.
func (t *FolderTable) PruneReverse(fetched []api.Folder) []FolderChange {
	return t.pruneReverse(tagFolders(fetched))
}

func (t *FolderTable) pruneReverse(fetched []tagged) []FolderChange {
	claimed := make(map[int]bool, len(fetched))
	for _, f := range fetched {
		if i := t.claim(f); i >= 0 {
			claimed[i] = true
		}
	}

	var changes []FolderChange
	kept := t.rows[:0]
	for i, row := range t.rows {
		if claimed[i] {
			kept = append(kept, row)
			continue
		}
		changes = append(changes, FolderChange{Action: events.ChangeDelete, Record: row})
	}
	clearTail(t.rows, len(kept))
	t.rows = kept
	return changes
}

// claim returns the row f identifies: the first row holding its secret,
// else the first row holding its tag.
func (t *FolderTable) claim(f tagged) int {
	if i := t.indexBySecret(f.Secret); i >= 0 {
		return i
	}
	return t.indexByTag(f.tag)
}

// Remove deletes the row holding secret.
func (t *FolderTable) Remove(secret string) (FolderRecord, bool) {
	i := t.indexBySecret(secret)
	if i < 0 {
		return FolderRecord{}, false
	}
	row := t.rows[i]
	n := len(t.rows) - 1
	copy(t.rows[i:], t.rows[i+1:])
	clearTail(t.rows, n)
	t.rows = t.rows[:n]
	return row, true
}

// holds reports whether any row still carries secret or tag.
func (t *FolderTable) holds(secret, tag string) (bySecret, byTag bool) {
	return t.indexBySecret(secret) >= 0, tag != "" && t.indexByTag(tag) >= 0
}

func clearTail[T any](rows []T, from int) {
	var zero T
	for i := from; i < len(rows); i++ {
		rows[i] = zero
	}
}
