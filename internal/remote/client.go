// Package remote fetches a ready-made schema document from an upstream
// endpoint. The document is cached for a bounded window and refetched once
// stale; there is no retry and no request de-duplication — a later fetch
// simply supersedes an earlier one.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"formspec-backend/internal/schema"
)

const defaultTTL = 5 * time.Minute

// Client fetches and caches one schema document from a fixed URL.
type Client struct {
	url  string
	ttl  time.Duration
	http *http.Client

	mu        sync.Mutex
	cached    *schema.Document
	fetchedAt time.Time
}

func NewClient(url string, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Client{
		url:  url,
		ttl:  ttl,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch returns the cached document while fresh, otherwise gets it from the
// upstream endpoint. A fetch failure with a stale cache still fails — the
// caller decides whether stale data is acceptable via FetchStale.
func (c *Client) Fetch(ctx context.Context) (*schema.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.cached, nil
	}

	doc, err := c.get(ctx)
	if err != nil {
		return nil, err
	}

	c.cached = doc
	c.fetchedAt = time.Now()
	return doc, nil
}

// FetchStale behaves like Fetch but falls back to the stale cached document
// when the upstream is unreachable.
func (c *Client) FetchStale(ctx context.Context) (*schema.Document, error) {
	doc, err := c.Fetch(ctx)
	if err == nil {
		return doc, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil {
		return c.cached, nil
	}
	return nil, err
}

// Invalidate drops the cached document so the next Fetch hits the upstream.
func (c *Client) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
	c.fetchedAt = time.Time{}
}

func (c *Client) get(ctx context.Context) (*schema.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch remote schema: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch remote schema: status %d: %s", resp.StatusCode, body)
	}

	var doc schema.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode remote schema: %w", err)
	}
	return &doc, nil
}
