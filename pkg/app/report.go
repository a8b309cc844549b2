package app

import (
	"context"
	"time"

	"tableflip.dev/syncpanel/pkg/reconcile"
	"tableflip.dev/syncpanel/pkg/status"
)

// ReportDevice is one peer of a folder in a status report.
type ReportDevice struct {
	Name   string `json:"name"`
	PeerID string `json:"peer_id"`
	Status string `json:"status"`
}

// ReportSection groups a folder with its devices.
type ReportSection struct {
	Path    string         `json:"path"`
	Secret  string         `json:"secret,omitempty"`
	Content string         `json:"content"`
	Devices []ReportDevice `json:"devices,omitempty"`
}

// ReportResult is a point-in-time view of the panel state.
type ReportResult struct {
	Taken    time.Time       `json:"taken"`
	Sections []ReportSection `json:"folders"`
	Folders  int             `json:"folder_count"`
	Devices  int             `json:"device_count"`
	Transfer string          `json:"transfer"`
}

// Report runs a fresh pass and returns the tables grouped by folder.
// Secrets are included only when withSecrets is set.
func (s *Service) Report(ctx context.Context, withSecrets bool) (ReportResult, error) {
	if err := s.Refresh(ctx); err != nil {
		return ReportResult{}, err
	}
	return buildReport(s.Snapshot(), withSecrets, time.Now()), nil
}

func buildReport(snap reconcile.Snapshot, withSecrets bool, now time.Time) ReportResult {
	sections := make([]ReportSection, 0, len(snap.Folders))
	for _, f := range snap.Folders {
		section := ReportSection{Path: f.Path, Content: f.Content}
		if withSecrets {
			section.Secret = f.Secret
		}
		for _, d := range snap.DevicesOf(f) {
			section.Devices = append(section.Devices, ReportDevice{
				Name:   d.Name,
				PeerID: d.PeerID,
				Status: d.Status,
			})
		}
		sections = append(sections, section)
	}
	return ReportResult{
		Taken:    now,
		Sections: sections,
		Folders:  len(snap.Folders),
		Devices:  len(snap.Devices),
		Transfer: status.TransferLabel(snap.Transfer),
	}
}
