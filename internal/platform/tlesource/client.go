// Package tlesource fetches Two-Line Element sets from CelesTrak and
// caches them; TLEs age on the order of days, so a generous TTL keeps the
// service from hammering the upstream on every request.
package tlesource

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/salcedoinaki/stellar/internal/orbital/tle"
	"github.com/salcedoinaki/stellar/internal/platform/observability"
)

// TLE is a fetched element set together with its provenance.
type TLE struct {
	NoradID     int       `json:"norad_id"`
	Name        string    `json:"name"`
	Line1       string    `json:"line1"`
	Line2       string    `json:"line2"`
	Epoch       time.Time `json:"epoch"`
	RetrievedAt time.Time `json:"retrieved_at"`
	Source      string    `json:"source"`
}

// Config holds TLE source configuration.
type Config struct {
	// CelesTrak base URL (default: https://celestrak.org)
	CelesTrakURL string
	// HTTP timeout
	Timeout time.Duration
	// TLE cache TTL
	CacheTTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		CelesTrakURL: "https://celestrak.org",
		Timeout:      30 * time.Second,
		CacheTTL:     1 * time.Hour,
	}
}

// Client fetches and caches TLEs.
type Client struct {
	httpClient   *http.Client
	celestrakURL string
	cache        *tleCache
	metrics      *observability.Metrics
}

// NewClient creates a TLE source client. metrics may be nil.
func NewClient(cfg Config, metrics *observability.Metrics) *Client {
	if cfg.CelesTrakURL == "" {
		cfg.CelesTrakURL = "https://celestrak.org"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 1 * time.Hour
	}

	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		celestrakURL: cfg.CelesTrakURL,
		cache:        newTLECache(cfg.CacheTTL),
		metrics:      metrics,
	}
}

// Common NORAD IDs.
const (
	NoradISS    = 25544 // International Space Station
	NoradHubble = 20580 // Hubble Space Telescope
	NoradNOAA19 = 33591 // NOAA 19 weather satellite
)

// GetTLE returns the element set for a NORAD catalog number, from cache
// when fresh.
func (c *Client) GetTLE(ctx context.Context, noradID int) (*TLE, error) {
	if cached, ok := c.cache.get(noradID); ok {
		return cached, nil
	}

	url := fmt.Sprintf("%s/NORAD/elements/gp.php?CATNR=%d&FORMAT=TLE", c.celestrakURL, noradID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFetch(false)
		return nil, fmt.Errorf("celestrak request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.recordFetch(false)
		return nil, fmt.Errorf("celestrak returned %d", resp.StatusCode)
	}

	result, err := parseResponse(noradID, resp.Body)
	if err != nil {
		c.recordFetch(false)
		return nil, err
	}
	c.recordFetch(true)

	c.cache.set(noradID, result)
	return result, nil
}

func (c *Client) recordFetch(success bool) {
	if c.metrics != nil {
		c.metrics.RecordTLEFetch("celestrak", success)
	}
}

// parseResponse reads the 3LE text body (name line plus the two element
// lines) and validates the elements before handing them out.
func parseResponse(noradID int, body io.Reader) (*TLE, error) {
	var lines []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), " \r"); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read celestrak body: %w", err)
	}

	name := fmt.Sprintf("NORAD %d", noradID)
	switch len(lines) {
	case 2:
		// Bare TLE without a name line.
	case 3:
		name = strings.TrimSpace(lines[0])
		lines = lines[1:]
	default:
		return nil, fmt.Errorf("unexpected celestrak response (%d lines)", len(lines))
	}

	parsed, err := tle.Parse(lines[0], lines[1])
	if err != nil {
		return nil, fmt.Errorf("celestrak TLE for %d: %w", noradID, err)
	}

	return &TLE{
		NoradID:     parsed.NoradID,
		Name:        name,
		Line1:       parsed.Line1,
		Line2:       parsed.Line2,
		Epoch:       parsed.Epoch,
		RetrievedAt: time.Now().UTC(),
		Source:      "celestrak",
	}, nil
}

// tleCache is a TTL cache keyed by catalog number.
type tleCache struct {
	mu      sync.RWMutex
	entries map[int]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	tle       *TLE
	expiresAt time.Time
}

func newTLECache(ttl time.Duration) *tleCache {
	return &tleCache{
		entries: make(map[int]cacheEntry),
		ttl:     ttl,
	}
}

func (c *tleCache) get(noradID int) (*TLE, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[noradID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.tle, true
}

func (c *tleCache) set(noradID int, t *TLE) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[noradID] = cacheEntry{
		tle:       t,
		expiresAt: time.Now().Add(c.ttl),
	}
}
