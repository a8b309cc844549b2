// Package api is a client for the sync daemon's local HTTP control API.
//
// Every call is a GET against <base>/api?method=<name> with optional HTTP
// basic auth and a JSON answer. Failures are classified as
// ConnectivityError, ProtocolError or DomainError.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultAddress is where the daemon listens unless configured otherwise.
const DefaultAddress = "127.0.0.1:8888"

// Config holds client configuration.
type Config struct {
	Address  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client talks to one daemon instance. It is safe for concurrent use.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client

	mu         sync.RWMutex
	statusCode int
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  BaseURL(cfg.Address),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:    4,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}
}

// BaseURL normalizes a configured address ("host:port" or a full URL) into
// the base URL of the control API.
func BaseURL(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		address = DefaultAddress
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	return strings.TrimRight(address, "/")
}

// StatusCode returns the HTTP status of the most recent response, 0 if no
// response was received yet.
func (c *Client) StatusCode() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statusCode
}

func (c *Client) setStatusCode(code int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusCode = code
}

// Folders lists the folders known to the daemon.
func (c *Client) Folders(ctx context.Context) ([]Folder, error) {
	var folders []Folder
	if err := c.call(ctx, "get_folders", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// FolderPeers lists the peers of the folder identified by secret.
func (c *Client) FolderPeers(ctx context.Context, secret string) ([]Peer, error) {
	var peers []Peer
	if err := c.call(ctx, "get_folder_peers", url.Values{"secret": {secret}}, &peers); err != nil {
		return nil, err
	}
	return peers, nil
}

// Speed returns the current overall transfer rates.
func (c *Client) Speed(ctx context.Context) (Speed, error) {
	var speed Speed
	if err := c.call(ctx, "get_speed", nil, &speed); err != nil {
		return Speed{}, err
	}
	return speed, nil
}

// AddFolder asks the daemon to start syncing dir with the given secret.
func (c *Client) AddFolder(ctx context.Context, dir, secret string) error {
	params := url.Values{"dir": {dir}}
	if secret != "" {
		params.Set("secret", secret)
	}
	return c.mutate(ctx, "add_folder", params)
}

// RemoveFolder stops syncing the folder identified by secret. Files on disk
// are left alone.
func (c *Client) RemoveFolder(ctx context.Context, secret string) error {
	return c.mutate(ctx, "remove_folder", url.Values{"secret": {secret}})
}

// Secrets returns the secrets derived from secret. With an empty secret the
// daemon generates a fresh set.
func (c *Client) Secrets(ctx context.Context, secret string) (Secrets, error) {
	var params url.Values
	if secret != "" {
		params = url.Values{"secret": {secret}}
	}
	var res Result
	if err := c.call(ctx, "get_secrets", params, &res); err != nil {
		return Secrets{}, err
	}
	if code := res.Code(); code != 0 {
		return Secrets{}, &DomainError{Method: "get_secrets", Code: code, Message: res.Message()}
	}
	str := func(key string) string {
		s, _ := res[key].(string)
		return s
	}
	return Secrets{
		ReadWrite:  str("read_write"),
		ReadOnly:   str("read_only"),
		Encryption: str("encryption"),
	}, nil
}

// Prefs returns the daemon preferences.
func (c *Client) Prefs(ctx context.Context) (Prefs, error) {
	var prefs Prefs
	if err := c.call(ctx, "get_prefs", nil, &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// SetPrefs updates daemon preferences.
func (c *Client) SetPrefs(ctx context.Context, values map[string]string) error {
	return c.mutate(ctx, "set_prefs", toValues(values))
}

// FolderPrefs returns the preferences of the folder identified by secret.
func (c *Client) FolderPrefs(ctx context.Context, secret string) (Prefs, error) {
	var prefs Prefs
	if err := c.call(ctx, "get_folder_prefs", url.Values{"secret": {secret}}, &prefs); err != nil {
		return nil, err
	}
	if code := Result(prefs).Code(); code != 0 {
		return nil, &DomainError{Method: "get_folder_prefs", Code: code, Message: Result(prefs).Message()}
	}
	return prefs, nil
}

// SetFolderPrefs updates preferences of the folder identified by secret.
func (c *Client) SetFolderPrefs(ctx context.Context, secret string, values map[string]string) error {
	params := toValues(values)
	params.Set("secret", secret)
	return c.mutate(ctx, "set_folder_prefs", params)
}

// Version returns the daemon version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var res Result
	if err := c.call(ctx, "get_version", nil, &res); err != nil {
		return "", err
	}
	switch v := res["version"].(type) {
	case string:
		return v, nil
	case float64:
		return fmt.Sprintf("%.0f", v), nil
	default:
		return "", nil
	}
}

func (c *Client) mutate(ctx context.Context, method string, params url.Values) error {
	var res Result
	if err := c.call(ctx, method, params, &res); err != nil {
		return err
	}
	if code := res.Code(); code != 0 {
		return &DomainError{Method: method, Code: code, Message: res.Message()}
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, params url.Values, out any) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("method", method)
	target := c.baseURL + "/api?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("api: %s: build request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ConnectivityError{Method: method, Err: err}
	}
	defer resp.Body.Close()
	c.setStatusCode(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProtocolError{Method: method, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProtocolError{Method: method, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func toValues(values map[string]string) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out.Set(k, v)
	}
	return out
}
