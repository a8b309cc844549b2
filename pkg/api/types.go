package api

import (
	"fmt"
	"strconv"
)

// Folder is one entry of the get_folders response.
type Folder struct {
	Dir      string `json:"dir"`
	Secret   string `json:"secret"`
	Type     string `json:"type,omitempty"`
	Size     int64  `json:"size"`
	Files    int64  `json:"files"`
	Error    int    `json:"error"`
	Message  string `json:"message,omitempty"`
	Indexing int    `json:"indexing"`
}

// ErrorMessage renders the error state reported for the folder.
func (f Folder) ErrorMessage() string {
	return Result{"error": float64(f.Error), "message": f.Message}.Message()
}

// Peer is one entry of the get_folder_peers response.
type Peer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Connection string `json:"connection"`
	Synced     int64  `json:"synced"`
	Upload     int64  `json:"upload"`
	Download   int64  `json:"download"`
}

// Speed is the get_speed response, in bytes per second.
type Speed struct {
	Upload   float64 `json:"upload"`
	Download float64 `json:"download"`
}

// Secrets is the get_secrets response. ReadWrite is empty when the daemon
// only holds the read-only secret.
type Secrets struct {
	ReadWrite  string `json:"read_write,omitempty"`
	ReadOnly   string `json:"read_only"`
	Encryption string `json:"encryption,omitempty"`
}

// Result is the loosely typed body of mutating calls.
type Result map[string]any

// Code returns the daemon error code carried by the result, 0 on success.
func (r Result) Code() int {
	if r == nil {
		return 0
	}
	switch v := r["error"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Message returns the daemon error message, or a generic one derived from the
// code when the daemon did not send any text.
func (r Result) Message() string {
	if msg, ok := r["message"].(string); ok && msg != "" {
		return msg
	}
	code := r.Code()
	if code == 0 {
		return ""
	}
	return fmt.Sprintf("Error %d", code)
}

// Prefs holds daemon or folder preferences as returned by the API. Numeric
// values decode as float64.
type Prefs map[string]any

// String returns the textual form of a preference value.
func (p Prefs) String(name string) string {
	switch v := p[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(v)
	}
}

// Int returns a numeric preference value, 0 when absent or not numeric.
func (p Prefs) Int(name string) int64 {
	switch v := p[name].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}
