package prefs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind is the value type of a preference.
type Kind int

const (
	// String values are sent as typed.
	String Kind = iota
	// Bool values are sent as 0 or 1.
	Bool
	// Int values are sent as base-10 integers.
	Int
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	default:
		return "string"
	}
}

// Descriptor describes one daemon preference and how to validate it.
type Descriptor struct {
	Name     string
	Kind     Kind
	Min, Max int64
	Advanced bool
	Help     string
}

var known = map[string]Descriptor{
	"device_name":                     {Name: "device_name", Kind: String, Help: "name shown to other devices"},
	"listening_port":                  {Name: "listening_port", Kind: Int, Min: 1, Max: 65535, Help: "port for incoming connections"},
	"use_upnp":                        {Name: "use_upnp", Kind: Bool, Help: "map the listening port with UPnP"},
	"download_limit":                  {Name: "download_limit", Kind: Int, Min: 0, Max: 1 << 31, Help: "download limit in kB/s, 0 for none"},
	"upload_limit":                    {Name: "upload_limit", Kind: Int, Min: 0, Max: 1 << 31, Help: "upload limit in kB/s, 0 for none"},
	"disk_low_priority":               {Name: "disk_low_priority", Kind: Bool, Advanced: true},
	"folder_rescan_interval":          {Name: "folder_rescan_interval", Kind: Int, Min: 0, Max: 1 << 31, Advanced: true},
	"lan_encrypt_data":                {Name: "lan_encrypt_data", Kind: Bool, Advanced: true},
	"lan_use_tcp":                     {Name: "lan_use_tcp", Kind: Bool, Advanced: true},
	"lang":                            {Name: "lang", Kind: Int, Min: 0, Max: 1 << 31, Advanced: true},
	"max_file_size_diff_for_patching": {Name: "max_file_size_diff_for_patching", Kind: Int, Min: 0, Max: 1 << 31, Advanced: true},
	"max_file_size_for_versioning":    {Name: "max_file_size_for_versioning", Kind: Int, Min: 0, Max: 1 << 31, Advanced: true},
	"rate_limit_local_peers":          {Name: "rate_limit_local_peers", Kind: Bool, Advanced: true},
	"recv_buf_size":                   {Name: "recv_buf_size", Kind: Int, Min: 1, Max: 100, Advanced: true},
	"send_buf_size":                   {Name: "send_buf_size", Kind: Int, Min: 1, Max: 100, Advanced: true},
	"sync_max_time_diff":              {Name: "sync_max_time_diff", Kind: Int, Min: 0, Max: 1 << 31, Advanced: true},
	"sync_trash_ttl":                  {Name: "sync_trash_ttl", Kind: Int, Min: 0, Max: 1 << 31, Advanced: true},
}

// Lookup returns the descriptor for name. Unknown names are passed through
// as strings.
func Lookup(name string) Descriptor {
	if d, ok := known[name]; ok {
		return d
	}
	return Descriptor{Name: name, Kind: String}
}

// Known lists the known preference names in alphabetical order.
func Known() []Descriptor {
	out := make([]Descriptor, 0, len(known))
	for _, d := range known {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Parse validates raw and returns the value to send to the daemon.
func (d Descriptor) Parse(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch d.Kind {
	case Bool:
		switch strings.ToLower(raw) {
		case "1", "true", "yes", "on":
			return "1", nil
		case "0", "false", "no", "off":
			return "0", nil
		}
		return "", fmt.Errorf("prefs: %s: %q is not a boolean", d.Name, raw)
	case Int:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", fmt.Errorf("prefs: %s: %q is not a number", d.Name, raw)
		}
		if n < d.Min || (d.Max > 0 && n > d.Max) {
			return "", fmt.Errorf("prefs: %s: %d out of range [%d, %d]", d.Name, n, d.Min, d.Max)
		}
		return strconv.FormatInt(n, 10), nil
	default:
		return raw, nil
	}
}

// cacheValue converts a wire value to the form the daemon returns it in, so
// the cache reads the same after a Set as after a Load.
func (d Descriptor) cacheValue(wire string) any {
	switch d.Kind {
	case Bool, Int:
		n, _ := strconv.ParseInt(wire, 10, 64)
		return float64(n)
	default:
		return wire
	}
}
