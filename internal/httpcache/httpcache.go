// Package httpcache implements the validating HTTP cache described in
// spec.md §4.1: conditional revalidation via ETag/Last-Modified, bounded
// LRU eviction at capacity, and stale-while-revalidate fallback on network
// failure. It is shared by every ecosystem's registry client.
package httpcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// defaultCapacity is the entry-count ceiling at which eviction kicks in,
// per spec.md §4.1 "≈1000".
const defaultCapacity = 1000

// Body is a reference-counted immutable response body. Multiple callers of
// Get share the same Body value (and its underlying byte slice) without
// copying, per spec.md §3 "CachedResponse" and §9 "Reference-counted shared
// buffers".
type Body struct {
	Bytes []byte
}

type entry struct {
	body         *Body
	etag         string
	lastModified string
	fetchedAt    time.Time
}

// Cache is the shared, read-mostly HTTP cache. spec.md §4.1 "leaves room
// for LRU or TTL later" and only requires bounded size with a preference
// for evicting older entries; hashicorp/golang-lru gives exactly that
// (true least-recently-used eviction once the ceiling is hit) without a
// hand-rolled eviction sweep.
type Cache struct {
	client   *http.Client
	entries  *lru.Cache[string, *entry]

	// flight coalesces concurrent Get calls for the same URL into a
	// single in-flight request, avoiding a thundering herd when many
	// open documents reference the same package.
	flight singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithCapacity overrides the default eviction ceiling.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		entries, _ := lru.New[string, *entry](n)
		c.entries = entries
	}
}

// WithHTTPClient overrides the underlying *http.Client (tests use this to
// inject a client pointed at an httptest.Server).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) { c.client = client }
}

// New constructs a Cache backed by a cleanhttp client (no implicit proxy
// environment surprises, a fresh Transport per client as cleanhttp
// recommends for long-lived singletons like this one).
func New(opts ...Option) *Cache {
	entries, _ := lru.New[string, *entry](defaultCapacity)
	c := &Cache{
		client:  cleanhttp.DefaultPooledClient(),
		entries: entries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs get-or-revalidate(url) → shared body buffer, per spec.md
// §4.1's contract. urlStr must be HTTPS unless AllowInsecureForTests has
// been called.
func (c *Cache) Get(ctx context.Context, urlStr string) (*Body, error) {
	if err := validateURL(urlStr); err != nil {
		return nil, err
	}

	v, err, _ := c.flight.Do(urlStr, func() (any, error) {
		return c.getOrRevalidate(ctx, urlStr)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Body), nil
}

func (c *Cache) getOrRevalidate(ctx context.Context, urlStr string) (*Body, error) {
	prior, hit := c.entries.Get(urlStr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("httpcache: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if hit {
		if prior.etag != "" {
			req.Header.Set("If-None-Match", prior.etag)
		}
		if prior.lastModified != "" {
			req.Header.Set("If-Modified-Since", prior.lastModified)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if hit {
			// Network error on revalidation: swallow it and return the
			// cached body (stale-while-revalidate).
			return prior.body, nil
		}
		return nil, fmt.Errorf("httpcache: fetching %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	switch {
	case hit && resp.StatusCode == http.StatusNotModified:
		return prior.body, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			if hit {
				return prior.body, nil
			}
			return nil, fmt.Errorf("httpcache: reading body of %s: %w", urlStr, err)
		}
		e := &entry{
			body:         &Body{Bytes: data},
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
			fetchedAt:    time.Now(),
		}
		c.entries.Add(urlStr, e)
		return e.body, nil
	default:
		if hit {
			// Non-2xx on revalidation: swallow, return stale body.
			return prior.body, nil
		}
		return nil, fmt.Errorf("httpcache: %s returned status %d: %w", urlStr, resp.StatusCode, errNonSuccess)
	}
}

// Len reports the current entry count, for tests asserting eviction
// behavior.
func (c *Cache) Len() int {
	return c.entries.Len()
}

var errNonSuccess = fmt.Errorf("non-2xx response")

var insecureAllowed bool

// AllowInsecureForTests relaxes the HTTPS-only validation, per spec.md
// §4.1 "validation may be relaxed for test builds only". Must only be
// called from _test.go files against an httptest.Server.
func AllowInsecureForTests() {
	insecureAllowed = true
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("httpcache: invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "https" && !(insecureAllowed && u.Scheme == "http") {
		return fmt.Errorf("httpcache: %q must use https", raw)
	}
	return nil
}
