// Package apitest provides an in-process fake of the daemon control API for
// tests.
package apitest

import (
	"encoding/base32"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"tableflip.dev/syncpanel/pkg/api"
)

// Daemon is a fake control API. Its state can be changed between requests to
// simulate the daemon evolving under the panel.
type Daemon struct {
	*httptest.Server

	mu       sync.Mutex
	folders  []api.Folder
	peers    map[string][]api.Peer
	speed    api.Speed
	prefs    api.Prefs
	fprefs   map[string]api.Prefs
	fail     map[string]int
	domain   map[string]api.Result
	calls    []string
	secretID int
}

// NewDaemon starts a fake daemon. Callers must Close it.
func NewDaemon() *Daemon {
	d := &Daemon{
		peers:  make(map[string][]api.Peer),
		prefs:  api.Prefs{},
		fprefs: make(map[string]api.Prefs),
		fail:   make(map[string]int),
		domain: make(map[string]api.Result),
	}
	d.Server = httptest.NewServer(http.HandlerFunc(d.serve))
	return d
}

// Client returns a real client pointed at the fake.
func (d *Daemon) Client() *api.Client {
	return api.New(api.Config{Address: d.URL})
}

// SetFolders replaces the folder list.
func (d *Daemon) SetFolders(folders ...api.Folder) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.folders = append([]api.Folder(nil), folders...)
}

// SetPeers replaces the peer list of a folder.
func (d *Daemon) SetPeers(secret string, peers ...api.Peer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.peers[secret] = append([]api.Peer(nil), peers...)
}

// SetSpeed replaces the reported transfer rates.
func (d *Daemon) SetSpeed(speed api.Speed) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.speed = speed
}

// SetPrefs replaces the daemon preferences.
func (d *Daemon) SetPrefs(prefs api.Prefs) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prefs = api.Prefs{}
	for k, v := range prefs {
		d.prefs[k] = v
	}
}

// Prefs returns a copy of the daemon preferences.
func (d *Daemon) Prefs() api.Prefs {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := api.Prefs{}
	for k, v := range d.prefs {
		out[k] = v
	}
	return out
}

// Folders returns a copy of the folder list.
func (d *Daemon) Folders() []api.Folder {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]api.Folder(nil), d.folders...)
}

// FailWith makes every later call of method answer with the HTTP status.
// A status of 0 clears the failure.
func (d *Daemon) FailWith(method string, status int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status == 0 {
		delete(d.fail, method)
		return
	}
	d.fail[method] = status
}

// RejectWith makes every later call of method answer with a domain error.
func (d *Daemon) RejectWith(method string, code int, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code == 0 {
		delete(d.domain, method)
		return
	}
	d.domain[method] = api.Result{"error": code, "message": message}
}

// Calls returns the methods called so far, in order.
func (d *Daemon) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// CallCount returns how often method was called.
func (d *Daemon) CallCount(method string) int {
	n := 0
	for _, c := range d.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

func (d *Daemon) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api" {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	method := q.Get("method")

	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, method)

	if status, ok := d.fail[method]; ok {
		http.Error(w, "failure", status)
		return
	}
	if res, ok := d.domain[method]; ok {
		writeJSON(w, res)
		return
	}

	switch method {
	case "get_folders":
		writeJSON(w, append([]api.Folder{}, d.folders...))
	case "get_folder_peers":
		writeJSON(w, append([]api.Peer{}, d.peers[q.Get("secret")]...))
	case "get_speed":
		writeJSON(w, d.speed)
	case "get_prefs":
		writeJSON(w, d.prefs)
	case "set_prefs":
		for k, v := range q {
			if k == "method" {
				continue
			}
			d.prefs[k] = v[0]
		}
		writeJSON(w, d.prefs)
	case "get_folder_prefs":
		if _, ok := d.folderIndex(q.Get("secret")); !ok {
			writeJSON(w, api.Result{"error": 101, "message": "Folder not found"})
			return
		}
		prefs := d.fprefs[q.Get("secret")]
		if prefs == nil {
			prefs = api.Prefs{"search_lan": float64(1), "use_dht": float64(0)}
		}
		writeJSON(w, prefs)
	case "set_folder_prefs":
		secret := q.Get("secret")
		if d.fprefs[secret] == nil {
			d.fprefs[secret] = api.Prefs{}
		}
		for k, v := range q {
			if k == "method" || k == "secret" {
				continue
			}
			d.fprefs[secret][k] = v[0]
		}
		writeJSON(w, api.Result{"error": 0})
	case "add_folder":
		secret := q.Get("secret")
		if secret == "" {
			secret = d.newSecret()
		}
		for _, f := range d.folders {
			if f.Dir == q.Get("dir") {
				writeJSON(w, api.Result{"error": 105, "message": "Folder already added"})
				return
			}
		}
		d.folders = append(d.folders, api.Folder{Dir: q.Get("dir"), Secret: secret})
		writeJSON(w, api.Result{"error": 0})
	case "remove_folder":
		idx, ok := d.folderIndex(q.Get("secret"))
		if !ok {
			writeJSON(w, api.Result{"error": 101, "message": "Folder not found"})
			return
		}
		d.folders = append(d.folders[:idx], d.folders[idx+1:]...)
		writeJSON(w, api.Result{"error": 0})
	case "get_secrets":
		secret := q.Get("secret")
		if secret == "" {
			secret = d.newSecret()
		}
		res := api.Result{"read_only": "B" + secret[1:], "encryption": "D" + secret[1:]}
		if strings.HasPrefix(secret, "A") {
			res["read_write"] = secret
		}
		writeJSON(w, res)
	case "get_version":
		writeJSON(w, api.Result{"version": "1.4.111"})
	default:
		http.Error(w, "unknown method", http.StatusBadRequest)
	}
}

func (d *Daemon) folderIndex(secret string) (int, bool) {
	for i, f := range d.folders {
		if f.Secret == secret {
			return i, true
		}
	}
	return -1, false
}

func (d *Daemon) newSecret() string {
	d.secretID++
	return "A" + base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(fmt.Sprintf("secret%014d", d.secretID)))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
