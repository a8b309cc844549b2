package folder

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"tableflip.dev/syncpanel/pkg/api/apitest"
	"tableflip.dev/syncpanel/pkg/app"
)

func newService(t *testing.T) (*app.Service, *apitest.Daemon) {
	t.Helper()
	daemon := apitest.NewDaemon()
	t.Cleanup(daemon.Close)
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/data/photos", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return app.New(daemon.Client(), app.WithFs(fs)), daemon
}

func TestAddPrintsGeneratedSecret(t *testing.T) {
	svc, daemon := newService(t)
	var buf bytes.Buffer

	a := Add{Service: svc, Dir: "/data/photos", Out: &buf}
	if err := a.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	folders := daemon.Folders()
	if len(folders) != 1 {
		t.Fatalf("daemon has %d folders, want 1", len(folders))
	}
	if !strings.Contains(buf.String(), "secret: "+folders[0].Secret) {
		t.Fatalf("output missing the generated secret:\n%s", buf.String())
	}
}

func TestRemoveByPath(t *testing.T) {
	svc, daemon := newService(t)
	add := Add{Service: svc, Dir: "/data/photos", Out: &bytes.Buffer{}}
	if err := add.Do(context.Background()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var buf bytes.Buffer
	r := Remove{Service: svc, Key: "/data/photos", Out: &buf}
	if err := r.Do(context.Background()); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n := len(daemon.Folders()); n != 0 {
		t.Fatalf("daemon still has %d folders", n)
	}
	if !strings.Contains(buf.String(), "stopped syncing /data/photos") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestPrefsSetsThenPrints(t *testing.T) {
	svc, _ := newService(t)
	add := Add{Service: svc, Dir: "/data/photos", Out: &bytes.Buffer{}}
	if err := add.Do(context.Background()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var buf bytes.Buffer
	p := Prefs{Service: svc, Key: "/data/photos", Set: []string{"use_dht=1"}, Out: &buf}
	if err := p.Do(context.Background()); err != nil {
		t.Fatalf("Prefs: %v", err)
	}
	if !strings.Contains(buf.String(), "use_dht") {
		t.Fatalf("output missing use_dht:\n%s", buf.String())
	}

	bad := Prefs{Service: svc, Key: "/data/photos", Set: []string{"use_dht"}, Out: &buf}
	if err := bad.Do(context.Background()); err == nil {
		t.Fatal("expected an error for a value without =")
	}
}

func TestMissingService(t *testing.T) {
	if err := (&Secrets{Key: "x"}).Do(context.Background()); err == nil {
		t.Fatal("expected an error without a service")
	}
}
