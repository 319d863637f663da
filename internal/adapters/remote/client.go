// Package remote mirrors the entity store to a shared session blob over
// HTTP.
//
// Conflict policy is last-write-wins over the whole store, compared by
// the lastUpdate stamp. There is no per-record merge: a push can drop a
// peer's concurrent edits, and that is the documented tradeoff, not a
// bug. Do not bolt a smarter merge onto this client; it would change
// observable behavior under concurrent judging.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Client talks to a session blob host.
type Client struct {
	base string
	http *http.Client
	now  func() int64
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout bounds a single request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithClock overrides the push stamp source for tests.
func WithClock(now func() int64) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a sync client against the blob host base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: defaultTimeout},
		now:  func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create posts the current store to the host, which assigns a session
// token returned in the Location header. Any failure here is fatal to
// session creation and surfaces as ErrCreate.
func (c *Client) Create(ctx context.Context, snap model.Snapshot) (string, error) {
	payload := snap.Remote(c.now())
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCreate, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/sessions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCreate, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCreate, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: unexpected status %d", ErrCreate, resp.StatusCode)
	}
	token := tokenFromLocation(resp.Header.Get("Location"))
	if token == "" {
		return "", fmt.Errorf("%w: response carried no session token", ErrCreate)
	}
	return token, nil
}

// Push overwrites the remote store with the given snapshot, stamped with
// the current time. Returns the stamp used so the caller can advance its
// last-synced watermark. Push failures are not retried here.
func (c *Client) Push(ctx context.Context, token string, snap model.Snapshot) (int64, error) {
	stamp := c.now()
	body, err := json.Marshal(snap.Remote(stamp))
	if err != nil {
		metrics.RecordSyncPushFailure()
		return 0, fmt.Errorf("%w: %w", ErrTransient, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.sessionURL(token), bytes.NewReader(body))
	if err != nil {
		metrics.RecordSyncPushFailure()
		return 0, fmt.Errorf("%w: %w", ErrTransient, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordSyncPushFailure()
		return 0, fmt.Errorf("%w: %w", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.RecordSyncPushFailure()
		return 0, fmt.Errorf("push %q: %w", token, ErrSessionNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.RecordSyncPushFailure()
		return 0, fmt.Errorf("%w: unexpected status %d", ErrTransient, resp.StatusCode)
	}
	metrics.RecordSyncPush()
	return stamp, nil
}

// Pull fetches the remote store. When force is false and the remote
// lastUpdate is not newer than since, Pull reports a no-op by returning
// nil: adopting a stale read would clobber newer local edits. A missing
// session surfaces as ErrSessionNotFound.
func (c *Client) Pull(ctx context.Context, token string, force bool, since int64) (*model.RemoteSnapshot, error) {
	metrics.RecordSyncPull()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sessionURL(token), nil)
	if err != nil {
		metrics.RecordSyncPullFailure()
		return nil, fmt.Errorf("%w: %w", ErrTransient, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordSyncPullFailure()
		return nil, fmt.Errorf("%w: %w", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("pull %q: %w", token, ErrSessionNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.RecordSyncPullFailure()
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransient, resp.StatusCode)
	}

	var snap model.RemoteSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		metrics.RecordSyncPullFailure()
		return nil, fmt.Errorf("%w: %w", ErrTransient, err)
	}

	if !force && snap.LastUpdate <= since {
		metrics.RecordSyncPullNoop()
		return nil, nil
	}
	return &snap, nil
}

func (c *Client) sessionURL(token string) string {
	return c.base + "/sessions/" + token
}

// tokenFromLocation extracts the final path segment of a Location header.
func tokenFromLocation(loc string) string {
	if loc == "" {
		return ""
	}
	loc = strings.TrimRight(loc, "/")
	if i := strings.LastIndex(loc, "/"); i >= 0 {
		return loc[i+1:]
	}
	return loc
}
