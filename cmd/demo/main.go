// Command demo runs the status panel against an in-process fake daemon
// seeded with a few folders and peers.
package main

import (
	"context"
	"os"
	"os/signal"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/api/apitest"
	"tableflip.dev/syncpanel/pkg/app"
	"tableflip.dev/syncpanel/pkg/runner/ui"
)

func main() {
	d := apitest.NewDaemon()
	defer d.Close()

	d.SetFolders(
		api.Folder{Dir: "/home/demo/Photos", Secret: "APHOTOSPHOTOSPHOTOSPHOTOS234567", Size: 734003200, Files: 1204},
		api.Folder{Dir: "/home/demo/Music", Secret: "AMUSICMUSICMUSICMUSICMUSIC23456", Size: 2147483648, Files: 3310, Indexing: 1},
		api.Folder{Dir: "/home/demo/Notes", Secret: "ANOTESNOTESNOTESNOTESNOTES23456", Size: 40960, Files: 88},
	)
	d.SetPeers("APHOTOSPHOTOSPHOTOSPHOTOS234567",
		api.Peer{ID: "PEER1", Name: "laptop", Connection: "direct", Synced: 1700000000, Upload: 2048},
		api.Peer{ID: "PEER2", Name: "phone", Connection: "relay", Download: 1024},
	)
	d.SetPeers("ANOTESNOTESNOTESNOTESNOTES23456",
		api.Peer{ID: "PEER1", Name: "laptop", Connection: "direct", Synced: 1700003600},
	)
	d.SetSpeed(api.Speed{Upload: 2048, Download: 1024})
	d.SetPrefs(api.Prefs{"device_name": "demo", "listening_port": float64(8888), "download_limit": float64(0), "upload_limit": float64(500)})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	u := ui.UI{Service: app.New(d.Client())}
	if err := u.Do(ctx); err != nil {
		panic(err)
	}
}
