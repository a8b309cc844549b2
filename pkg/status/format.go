// Package status renders the human-readable summaries shown for folders,
// devices and transfers.
package status

import (
	"fmt"
	"strconv"
	"time"

	"tableflip.dev/syncpanel/pkg/api"
)

// SyncedLayout is the date/time layout used for "Synced on" summaries.
const SyncedLayout = "01/02/06 15:04:05"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatSize renders a byte count with base-1024 units and one decimal.
func FormatSize(bytes int64) string {
	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return strconv.FormatFloat(value, 'f', 1, 64) + sizeUnits[unit]
}

// FolderSummary describes the content of a folder, or its error.
func FolderSummary(f api.Folder) string {
	if f.Error != 0 {
		return f.ErrorMessage()
	}
	s := fmt.Sprintf("%s in %d files", FormatSize(f.Size), f.Files)
	if f.Indexing != 0 {
		s += " (indexing...)"
	}
	return s
}

// DeviceSummary describes the sync state of a peer. loc selects the zone used
// for the last-synced time; nil means time.Local.
func DeviceSummary(p api.Peer, loc *time.Location) string {
	var s string
	switch {
	case p.Synced != 0:
		if loc == nil {
			loc = time.Local
		}
		s = "Synced on " + time.Unix(p.Synced, 0).In(loc).Format(SyncedLayout)
	case p.Download == 0 && p.Upload != 0:
		s = "⇧ " + FormatSize(p.Upload)
	case p.Download != 0 && p.Upload == 0:
		s = "⇩ " + FormatSize(p.Download)
	case p.Download != 0 && p.Upload != 0:
		s = "⇧ " + FormatSize(p.Upload) + " - ⇩ " + FormatSize(p.Download)
	default:
		s = "Idle..."
	}
	return s + connectionSuffix(p.Connection)
}

func connectionSuffix(connection string) string {
	switch connection {
	case "direct":
		return " (Direct Connection)"
	case "relay":
		return " (Relayed Connection)"
	default:
		return ""
	}
}

// Transfer is the overall transfer rate of the daemon in bytes per second.
type Transfer struct {
	Upload   float64
	Download float64
}

// TransferLabel renders the transfer rates in kB/s.
func TransferLabel(t Transfer) string {
	return fmt.Sprintf("%.1f kB/s up, %.1f kB/s down", t.Upload/1000, t.Download/1000)
}
