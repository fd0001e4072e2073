package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/repute-network/repute/internal/api"
)

// client is a thin HTTP client for a running daemon. Every request carries
// the caller principal in the X-Caller header.
type client struct {
	base   string
	caller string
	http   *http.Client
}

func newClient(addr, caller string) *client {
	return &client{
		base:   "http://" + addr,
		caller: caller,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends one request and decodes the JSON response into out (if non-nil).
// Non-2xx responses surface the server's error message.
func (c *client) do(method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.caller != "" {
		req.Header.Set(api.CallerHeader, c.caller)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s: %w", c.base, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error.Message != "" {
			return fmt.Errorf("%s (HTTP %d)", e.Error.Message, resp.StatusCode)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
