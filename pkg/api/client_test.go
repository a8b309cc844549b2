package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/api/apitest"
)

func TestFolders(t *testing.T) {
	d := apitest.NewDaemon()
	defer d.Close()
	d.SetFolders(api.Folder{Dir: "/a", Secret: "S1", Size: 2048, Files: 3})

	folders, err := d.Client().Folders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("expected 1 folder, got %d", len(folders))
	}
	if folders[0].Dir != "/a" || folders[0].Secret != "S1" || folders[0].Size != 2048 || folders[0].Files != 3 {
		t.Fatalf("unexpected folder: %+v", folders[0])
	}
}

func TestFolderPeersAndSpeed(t *testing.T) {
	d := apitest.NewDaemon()
	defer d.Close()
	d.SetPeers("S1", api.Peer{ID: "P1", Name: "laptop", Connection: "direct", Upload: 10})
	d.SetSpeed(api.Speed{Upload: 1500, Download: 250})

	c := d.Client()
	peers, err := c.FolderPeers(context.Background(), "S1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(peers) != 1 || peers[0].ID != "P1" || peers[0].Connection != "direct" {
		t.Fatalf("unexpected peers: %+v", peers)
	}
	speed, err := c.Speed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if speed.Upload != 1500 || speed.Download != 250 {
		t.Fatalf("unexpected speed: %+v", speed)
	}
	if c.StatusCode() != http.StatusOK {
		t.Fatalf("expected status 200, got %d", c.StatusCode())
	}
}

func TestBasicAuthAndQuery(t *testing.T) {
	var gotUser, gotPass, gotMethod, gotSecret string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		gotMethod = r.URL.Query().Get("method")
		gotSecret = r.URL.Query().Get("secret")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := api.New(api.Config{Address: ts.URL, Username: "admin", Password: "hunter2"})
	if _, err := c.FolderPeers(context.Background(), "S1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUser != "admin" || gotPass != "hunter2" {
		t.Fatalf("expected basic auth admin/hunter2, got %q/%q", gotUser, gotPass)
	}
	if gotMethod != "get_folder_peers" || gotSecret != "S1" {
		t.Fatalf("unexpected query method=%q secret=%q", gotMethod, gotSecret)
	}
}

func TestConnectivityError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	_, err := api.New(api.Config{Address: addr}).Folders(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var ce *api.ConnectivityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectivityError, got %T: %v", err, err)
	}
	if !api.IsFatal(err) {
		t.Fatalf("expected connectivity error to be fatal")
	}
}

func TestProtocolError(t *testing.T) {
	d := apitest.NewDaemon()
	defer d.Close()
	d.FailWith("get_folders", http.StatusUnauthorized)

	c := d.Client()
	_, err := c.Folders(context.Background())
	var pe *api.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProtocolError, got %T: %v", err, err)
	}
	if pe.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", pe.StatusCode)
	}
	if c.StatusCode() != http.StatusUnauthorized {
		t.Fatalf("expected last status 401, got %d", c.StatusCode())
	}
	if !api.IsFatal(err) {
		t.Fatalf("expected protocol error to be fatal")
	}
}

func TestMalformedBodyIsProtocolError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer ts.Close()

	_, err := api.New(api.Config{Address: ts.URL}).Speed(context.Background())
	var pe *api.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProtocolError, got %T: %v", err, err)
	}
}

func TestAddFolderDomainError(t *testing.T) {
	d := apitest.NewDaemon()
	defer d.Close()
	d.RejectWith("add_folder", 200, "Can't open the destination folder.")

	err := d.Client().AddFolder(context.Background(), "/nope", "")
	de, ok := api.AsDomain(err)
	if !ok {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if de.Code != 200 || de.Message != "Can't open the destination folder." {
		t.Fatalf("unexpected domain error: %+v", de)
	}
	if api.IsFatal(err) {
		t.Fatalf("domain errors must not be fatal")
	}
}

func TestAddRemoveFolder(t *testing.T) {
	d := apitest.NewDaemon()
	defer d.Close()
	c := d.Client()
	ctx := context.Background()

	if err := c.AddFolder(ctx, "/a", "S1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := d.Folders(); len(got) != 1 || got[0].Secret != "S1" {
		t.Fatalf("unexpected folders after add: %+v", got)
	}
	if err := c.RemoveFolder(ctx, "S1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := d.Folders(); len(got) != 0 {
		t.Fatalf("expected no folders, got %+v", got)
	}
	if _, ok := api.AsDomain(c.RemoveFolder(ctx, "S1")); !ok {
		t.Fatalf("expected domain error removing unknown folder")
	}
}

func TestSecrets(t *testing.T) {
	d := apitest.NewDaemon()
	defer d.Close()
	c := d.Client()

	gen, err := c.Secrets(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.ReadWrite == "" || gen.ReadOnly == "" {
		t.Fatalf("expected generated secrets, got %+v", gen)
	}

	ro, err := c.Secrets(context.Background(), "BREADONLY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ro.ReadWrite != "" {
		t.Fatalf("expected no read-write secret, got %q", ro.ReadWrite)
	}
}

func TestPrefsRoundTrip(t *testing.T) {
	d := apitest.NewDaemon()
	defer d.Close()
	d.SetPrefs(api.Prefs{"device_name": "box", "download_limit": float64(0)})
	c := d.Client()
	ctx := context.Background()

	if err := c.SetPrefs(ctx, map[string]string{"download_limit": "50"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	prefs, err := c.Prefs(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if prefs.Int("download_limit") != 50 {
		t.Fatalf("expected download_limit 50, got %v", prefs["download_limit"])
	}
	if prefs.String("device_name") != "box" {
		t.Fatalf("expected device_name box, got %q", prefs.String("device_name"))
	}
}

func TestResultAccessors(t *testing.T) {
	if (api.Result{}).Code() != 0 {
		t.Fatalf("expected code 0 for empty result")
	}
	r := api.Result{"error": float64(3)}
	if r.Code() != 3 || r.Message() != "Error 3" {
		t.Fatalf("unexpected accessors: %d %q", r.Code(), r.Message())
	}
	f := api.Folder{Error: 7, Message: "Disk full"}
	if f.ErrorMessage() != "Disk full" {
		t.Fatalf("unexpected folder error message %q", f.ErrorMessage())
	}
}

func TestBaseURL(t *testing.T) {
	tests := map[string]string{
		"":                        "http://127.0.0.1:8888",
		"localhost:9000":          "http://localhost:9000",
		"https://box.local:8888/": "https://box.local:8888",
	}
	for in, want := range tests {
		if got := api.BaseURL(in); got != want {
			t.Fatalf("BaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}
