package reconcile

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/events"
	"tableflip.dev/syncpanel/pkg/identity"
)

func reconcileFolders(t *FolderTable, fetched []api.Folder) []FolderChange {
	changes := t.SyncForward(fetched)
	return append(changes, t.PruneReverse(fetched)...)
}

func TestFolderScenarioSingleFolder(t *testing.T) {
	var table FolderTable
	reconcileFolders(&table, []api.Folder{{Dir: "/a", Secret: "S1", Size: 2048, Files: 3}})

	want := []FolderRecord{{Path: "/a", Content: "2.0KB in 3 files", Secret: "S1", Tag: identity.Tag("/a")}}
	if diff := cmp.Diff(want, table.Rows()); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestFolderSecretRotation(t *testing.T) {
	var table FolderTable
	reconcileFolders(&table, []api.Folder{{Dir: "/a", Secret: "S1", Size: 2048, Files: 3}})
	changes := reconcileFolders(&table, []api.Folder{{Dir: "/a", Secret: "S2", Size: 2048, Files: 3}})

	rows := table.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(rows))
	}
	if rows[0].Secret != "S2" {
		t.Fatalf("expected secret S2, got %q", rows[0].Secret)
	}
	if len(changes) != 1 || changes[0].Action != events.ChangeUpdate || changes[0].PreviousSecret != "S1" {
		t.Fatalf("expected one rotating update, got %+v", changes)
	}
}

func TestFolderEmptyFetchEmptiesTable(t *testing.T) {
	var table FolderTable
	reconcileFolders(&table, []api.Folder{{Dir: "/a", Secret: "S1"}, {Dir: "/b", Secret: "S2"}})
	changes := reconcileFolders(&table, nil)

	if table.Len() != 0 {
		t.Fatalf("expected empty table, got %+v", table.Rows())
	}
	if len(changes) != 2 {
		t.Fatalf("expected two deletes, got %+v", changes)
	}
	for _, c := range changes {
		if c.Action != events.ChangeDelete {
			t.Fatalf("expected delete, got %s", c.Action)
		}
	}
}

func TestFolderSyncForwardIdempotent(t *testing.T) {
	fetched := []api.Folder{
		{Dir: "/a", Secret: "S1", Size: 10, Files: 1},
		{Dir: "/b", Secret: "S2", Size: 20, Files: 2, Indexing: 1},
	}
	var table FolderTable
	table.SyncForward(fetched)
	first := table.Rows()

	changes := table.SyncForward(fetched)
	if len(changes) != 0 {
		t.Fatalf("expected no changes on second pass, got %+v", changes)
	}
	if diff := cmp.Diff(first, table.Rows()); diff != "" {
		t.Fatalf("rows changed on second pass (-first +second):\n%s", diff)
	}
}

func TestFolderContentUpdate(t *testing.T) {
	var table FolderTable
	table.SyncForward([]api.Folder{{Dir: "/a", Secret: "S1", Size: 10, Files: 1}})
	changes := table.SyncForward([]api.Folder{{Dir: "/a", Secret: "S1", Size: 10, Files: 1, Indexing: 1}})

	if len(changes) != 1 || changes[0].Action != events.ChangeUpdate {
		t.Fatalf("expected one update, got %+v", changes)
	}
	if got := table.Rows()[0].Content; got != "10.0B in 1 files (indexing...)" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestFolderSecretMatchWinsOverTag(t *testing.T) {
	var table FolderTable
	table.LoadInitial([]api.Folder{
		{Dir: "/a", Secret: "S9"},
		{Dir: "/b", Secret: "S1"},
	})
	// "/a" with secret S1: the secret matches row 2 before the tag matches row 1.
	table.SyncForward([]api.Folder{{Dir: "/a", Secret: "S1", Files: 4}})

	rows := table.Rows()
	if rows[0].Secret != "S9" || rows[1].Content != "0.0B in 4 files" {
		t.Fatalf("expected secret match to win, got %+v", rows)
	}
}

func TestFolderInsertionOrderPreserved(t *testing.T) {
	var table FolderTable
	reconcileFolders(&table, []api.Folder{{Dir: "/a", Secret: "S1"}, {Dir: "/b", Secret: "S2"}})
	reconcileFolders(&table, []api.Folder{{Dir: "/c", Secret: "S3"}, {Dir: "/b", Secret: "S2"}, {Dir: "/a", Secret: "S1"}})

	var paths []string
	for _, r := range table.Rows() {
		paths = append(paths, r.Path)
	}
	if diff := cmp.Diff([]string{"/a", "/b", "/c"}, paths); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestFolderLoadInitialAlwaysAppends(t *testing.T) {
	var table FolderTable
	changes := table.LoadInitial([]api.Folder{{Dir: "/a", Secret: "S1"}, {Dir: "/a", Secret: "S1"}})
	if table.Len() != 2 || len(changes) != 2 {
		t.Fatalf("expected two appended rows, got %d", table.Len())
	}
}

func TestFolderDisplayPathIsDecoded(t *testing.T) {
	var table FolderTable
	table.SyncForward([]api.Folder{{Dir: "/cafÃ©", Secret: "S1"}})
	row := table.Rows()[0]
	if row.Path != "/café" {
		t.Fatalf("expected decoded path, got %q", row.Path)
	}
	if row.Tag != identity.Tag("/cafÃ©") {
		t.Fatalf("expected tag of the raw path")
	}
}

func TestFolderRemove(t *testing.T) {
	var table FolderTable
	table.SyncForward([]api.Folder{{Dir: "/a", Secret: "S1"}, {Dir: "/b", Secret: "S2"}})
	row, ok := table.Remove("S1")
	if !ok || row.Path != "/a" {
		t.Fatalf("expected to remove /a, got %+v %v", row, ok)
	}
	if _, ok := table.Remove("S1"); ok {
		t.Fatalf("expected second removal to fail")
	}
	if table.Len() != 1 {
		t.Fatalf("expected one row left, got %d", table.Len())
	}
}

func TestFolderRemoveClearsBackingArray(t *testing.T) {
	var table FolderTable
	table.LoadInitial([]api.Folder{{Dir: "/a", Secret: "S1"}, {Dir: "/b", Secret: "S2"}, {Dir: "/c", Secret: "S3"}})
	if _, ok := table.Remove("S2"); !ok {
		t.Fatalf("expected to remove S2")
	}
	if got := table.rows[:3][2]; got != (FolderRecord{}) {
		t.Fatalf("stale row left behind the table: %+v", got)
	}
	want := []string{"S1", "S3"}
	var got []string
	for _, r := range table.Rows() {
		got = append(got, r.Secret)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestFolderDuplicatesCollapse(t *testing.T) {
	var table FolderTable
	table.LoadInitial([]api.Folder{{Dir: "/a", Secret: "S1"}, {Dir: "/a", Secret: "S1"}})

	changes := reconcileFolders(&table, []api.Folder{{Dir: "/a", Secret: "S1", Files: 2}})

	want := []FolderRecord{{Path: "/a", Content: "0.0B in 2 files", Secret: "S1", Tag: identity.Tag("/a")}}
	if diff := cmp.Diff(want, table.Rows()); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
	var deletes int
	for _, c := range changes {
		if c.Action == events.ChangeDelete {
			deletes++
		}
	}
	if deletes != 1 {
		t.Fatalf("expected one delete, got %+v", changes)
	}

	if changes := reconcileFolders(&table, []api.Folder{{Dir: "/a", Secret: "S1", Files: 2}}); len(changes) != 0 {
		t.Fatalf("expected a stable table, got %+v", changes)
	}
}

// A secret match on one row leaves another row matching only by tag
// unclaimed; that row is stale and must go.
func TestFolderTagOnlyRowDroppedWhenSecretClaimedElsewhere(t *testing.T) {
	var table FolderTable
	table.LoadInitial([]api.Folder{{Dir: "/a", Secret: "S9"}, {Dir: "/b", Secret: "S1"}})

	changes := reconcileFolders(&table, []api.Folder{{Dir: "/a", Secret: "S1", Files: 1}})

	want := []FolderRecord{{Path: "/b", Content: "0.0B in 1 files", Secret: "S1", Tag: identity.Tag("/b")}}
	if diff := cmp.Diff(want, table.Rows()); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
	last := changes[len(changes)-1]
	if last.Action != events.ChangeDelete || last.Record.Secret != "S9" {
		t.Fatalf("expected the S9 row deleted, got %+v", changes)
	}
}

// Every snapshot is built from a fixed pool of directories; each directory
// rotates through its own secrets. After a pass the table must hold exactly
// one row per fetched directory carrying the latest secret.
func TestFolderConvergence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	dirs := []string{"/a", "/b", "/c", "/d", "/e", "/music", "/Music"}

	var table FolderTable
	for round := 0; round < 200; round++ {
		var fetched []api.Folder
		for _, dir := range dirs {
			if rng.Intn(3) == 0 {
				continue
			}
			fetched = append(fetched, api.Folder{
				Dir:    dir,
				Secret: fmt.Sprintf("S%s-%d", dir, rng.Intn(3)),
				Size:   int64(rng.Intn(4096)),
				Files:  int64(rng.Intn(10)),
			})
		}
		rng.Shuffle(len(fetched), func(i, j int) { fetched[i], fetched[j] = fetched[j], fetched[i] })

		reconcileFolders(&table, fetched)

		want := make([]string, 0, len(fetched))
		for _, f := range fetched {
			want = append(want, f.Dir+"|"+f.Secret)
		}
		got := make([]string, 0, table.Len())
		for _, r := range table.Rows() {
			got = append(got, r.Path+"|"+r.Secret)
		}
		sort.Strings(want)
		sort.Strings(got)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("round %d: table diverged (-want +got):\n%s", round, diff)
		}
	}
}
