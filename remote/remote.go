// Package remote contains the http plumbing shared by market data providers.
package remote

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// diskCache implements a simple disk cache for HTTP responses.
type diskCache struct {
	base http.RoundTripper
	dir  string
	now  func() time.Time
	log  zerolog.Logger
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If a fresh cached response is not found, it proceeds
// with the actual HTTP request and caches the new response if it's successful.
func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// the key contains the day, so entries expire every day.
	key := fmt.Sprintf("%s %s %s", c.now().Format("2006-01-02"), req.Method, req.URL.String())
	key = fmt.Sprintf("stocks-%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil {
		c.log.Debug().Str("url", req.URL.Redacted()).Msg("cache hit")
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Str("status", resp.Status).Msg("http")
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		c.log.Warn().Err(err).Msg("cache write error (ignored)")
	}
	return resp, nil
}

// get retrieves a cached response from disk.
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk cache. The response body is consumed and
// replaced by an in-memory copy.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0644)
}

// Options configures the client returned by NewClient.
type Options struct {
	Timeout time.Duration
	Cache   bool   // cache successful responses on disk for the day.
	Dir     string // cache folder, defaults to os.TempDir().
	Logger  zerolog.Logger
}

// NewClient returns an http.Client for market data requests.
func NewClient(opts Options) *http.Client {
	client := &http.Client{Timeout: opts.Timeout}
	if opts.Cache {
		dir := opts.Dir
		if dir == "" {
			dir = os.TempDir()
		}
		client.Transport = &diskCache{
			base: http.DefaultTransport,
			dir:  dir,
			now:  time.Now,
			log:  opts.Logger.With().Str("component", "http-cache").Logger(),
		}
	}
	return client
}

// GetJSON performs an HTTP GET request to the given address and unmarshals the
// JSON response body into the provided data structure.
func GetJSON(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	// some providers reject requests without a browser agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stockctl)")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, data); err != nil {
		return fmt.Errorf("invalid JSON from %v%v: %w", resp.Request.URL.Host, resp.Request.URL.Path, err)
	}
	return nil
}
