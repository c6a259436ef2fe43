package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is the single gateway to the marketplace REST API. It attaches the
// bearer token when one is supplied (absence is not an error: anonymous
// browsing is supported) and maps upstream statuses onto the shared error
// taxonomy so every caller inherits the same 401/403/404/5xx behavior.
type Client struct {
	base string
	hc   *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// NewWithHTTPClient is used by tests to point at a scripted server.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	c := New(baseURL)
	if hc != nil {
		c.hc = hc
	}
	return c
}

// do issues one API call. token may be empty. When out is non-nil the
// response body is unwrapped from its {data:...} envelope and decoded into it.
func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		// Transport failures are kept distinct from HTTP errors: callers
		// treat them conservatively (e.g. the session token is preserved).
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		code, msg := errorDetail(raw)
		return statusError(resp.StatusCode, code, msg)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapData(raw), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// doRaw is like do but hands the unparsed body back, for endpoints whose
// shape needs tolerant decoding (orders, product pages).
func (c *Client) doRaw(ctx context.Context, token, method, path string, query url.Values) ([]byte, error) {
	var raw json.RawMessage
	// A RawMessage out captures the envelope-unwrapped payload verbatim.
	if err := c.do(ctx, token, method, path, query, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
