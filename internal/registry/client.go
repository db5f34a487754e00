// Package registry fetches dist-tags from an npm-compatible package registry.
//
// The client is deliberately small: one endpoint, one timeout, no retries.
// A failed or slow fetch means "no version information this run" — callers
// convert errors into that, never into a fatal condition.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thoreinstein/plugup/internal/channel"
	"github.com/thoreinstein/plugup/internal/errors"
)

// DefaultBaseURL is the public npm registry.
const DefaultBaseURL = "https://registry.npmjs.org"

// DefaultTimeout bounds a single dist-tags fetch. Checks run in the
// foreground of an interactive command, so this errs on the short side.
const DefaultTimeout = 10 * time.Second

// Client fetches dist-tags from one registry. It carries no per-package
// state; the same client serves any number of lookups.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a registry client. An empty baseURL selects the public npm
// registry; a non-positive timeout selects DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the registry the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tags maps dist-tag names to version strings.
type Tags map[string]string

// ForChannel returns the version the named channel points at, falling back
// to the latest tag when the channel has no entry of its own.
func (t Tags) ForChannel(ch string) (string, bool) {
	if v, ok := t[ch]; ok && v != "" {
		return v, true
	}
	if v, ok := t[channel.Latest]; ok && v != "" {
		return v, true
	}
	return "", false
}

// DistTags fetches the dist-tags for pkg. Scoped names are escaped into a
// single path segment. The request is bounded by both the client timeout
// and ctx, whichever expires first. Non-2xx responses and transport
// failures are returned as errors; they are never retried here.
func (c *Client) DistTags(ctx context.Context, pkg string) (Tags, error) {
	u := fmt.Sprintf("%s/-/package/%s/dist-tags", c.baseURL, url.PathEscape(pkg))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building dist-tags request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching dist-tags for %s", pkg)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("registry returned status %d for %s", resp.StatusCode, pkg)
	}

	var tags Tags
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, errors.Wrapf(err, "decoding dist-tags for %s", pkg)
	}

	return tags, nil
}
