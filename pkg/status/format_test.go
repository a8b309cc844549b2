package status

import (
	"testing"
	"time"

	"tableflip.dev/syncpanel/pkg/api"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0.0B"},
		{1, "1.0B"},
		{1023, "1023.0B"},
		{1024, "1.0KB"},
		{1536, "1.5KB"},
		{2048, "2.0KB"},
		{1024 * 1024, "1.0MB"},
		{5 * 1024 * 1024 * 1024, "5.0GB"},
		{1 << 50, "1.0PB"},
		{1 << 60, "1024.0PB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Fatalf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFolderSummary(t *testing.T) {
	tests := []struct {
		name string
		in   api.Folder
		want string
	}{
		{
			name: "plain",
			in:   api.Folder{Dir: "/a", Secret: "S1", Size: 2048, Files: 3},
			want: "2.0KB in 3 files",
		},
		{
			name: "indexing",
			in:   api.Folder{Size: 0, Files: 0, Indexing: 1},
			want: "0.0B in 0 files (indexing...)",
		},
		{
			name: "error with message",
			in:   api.Folder{Size: 2048, Files: 3, Error: 7, Message: "Disk full"},
			want: "Disk full",
		},
		{
			name: "error without message",
			in:   api.Folder{Error: 12},
			want: "Error 12",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FolderSummary(tt.in); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeviceSummary(t *testing.T) {
	synced := time.Date(2026, time.March, 4, 5, 6, 7, 0, time.UTC)
	tests := []struct {
		name string
		in   api.Peer
		want string
	}{
		{name: "synced direct", in: api.Peer{Synced: synced.Unix(), Connection: "direct"}, want: "Synced on 03/04/26 05:06:07 (Direct Connection)"},
		{name: "synced wins over transfer", in: api.Peer{Synced: synced.Unix(), Upload: 5}, want: "Synced on 03/04/26 05:06:07"},
		{name: "upload", in: api.Peer{Upload: 2048, Connection: "relay"}, want: "⇧ 2.0KB (Relayed Connection)"},
		{name: "download", in: api.Peer{Download: 1024}, want: "⇩ 1.0KB"},
		{name: "both", in: api.Peer{Upload: 1024, Download: 2048, Connection: "direct"}, want: "⇧ 1.0KB - ⇩ 2.0KB (Direct Connection)"},
		{name: "idle", in: api.Peer{}, want: "Idle..."},
		{name: "unknown connection", in: api.Peer{Connection: "lan"}, want: "Idle..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeviceSummary(tt.in, time.UTC); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransferLabel(t *testing.T) {
	if got := TransferLabel(Transfer{Upload: 1500, Download: 0}); got != "1.5 kB/s up, 0.0 kB/s down" {
		t.Fatalf("unexpected label %q", got)
	}
}
