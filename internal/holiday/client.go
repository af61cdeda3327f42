// Package holiday fetches the public-holiday table used to shade the
// timeline view. Data is served as one JSON document per (region, year)
// pair; a missing year is an empty table, not an error, so the timeline
// can always render with best-effort classification.
package holiday

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
)

// Detail describes one calendar date from the holiday feed. Wage 3
// marks statutory high-pay holidays, wage 2 ordinary rest days of a
// holiday block; Holiday=false entries are make-up workdays that
// override a weekend.
type Detail struct {
	Holiday bool   `json:"holiday"`
	Name    string `json:"name"`
	Wage    int    `json:"wage"`
	Date    string `json:"date"`
}

// Table maps "yyyy-MM-dd" calendar dates to their holiday detail.
type Table map[string]Detail

// Merge copies all entries of other into t.
func (t Table) Merge(other Table) {
	for k, v := range other {
		t[k] = v
	}
}

type apiResponse struct {
	Code    int               `json:"code"`
	Holiday map[string]Detail `json:"holiday"`
}

// Client fetches and caches per-year holiday tables.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

// NewClient creates a holiday client. baseURL is the directory serving
// {region}/{year}.json documents.
func NewClient(baseURL string, timeout, cacheTTL time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New(cacheTTL, 2*cacheTTL),
	}
}

// FetchYear returns the holiday table for one (region, year) pair.
// A 404 from the source yields an empty table and no error; other
// failures are returned to the caller, who degrades gracefully.
func (c *Client) FetchYear(region string, year int) (Table, error) {
	key := fmt.Sprintf("%s/%d", region, year)
	if cached, found := c.cache.Get(key); found {
		return cached.(Table), nil
	}

	url := fmt.Sprintf("%s/%s/%d.json", c.baseURL, region, year)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("holiday fetch failed for %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Printf("No holiday data for %s; using day-of-week fallback", key)
		empty := Table{}
		c.cache.Set(key, empty, cache.DefaultExpiration)
		return empty, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday source returned status %d for %s", resp.StatusCode, key)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read holiday response for %s: %w", key, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal holiday response for %s: %w", key, err)
	}
	if apiResp.Code != 0 {
		return nil, fmt.Errorf("holiday source returned application code %d for %s", apiResp.Code, key)
	}

	// The feed keys entries by month-day; re-key by the full date so
	// multi-year windows cannot collide.
	table := make(Table, len(apiResp.Holiday))
	for _, detail := range apiResp.Holiday {
		table[detail.Date] = detail
	}

	c.cache.Set(key, table, cache.DefaultExpiration)
	return table, nil
}

// FetchRange merges the tables of every year from startYear through
// endYear. Failures for individual years are logged and skipped; the
// returned error is the first one seen, alongside whatever partial
// table was assembled, so callers can render and surface a warning.
func (c *Client) FetchRange(region string, startYear, endYear int) (Table, error) {
	merged := Table{}
	var firstErr error
	for year := startYear; year <= endYear; year++ {
		table, err := c.FetchYear(region, year)
		if err != nil {
			log.Printf("Error fetching holidays for %s/%d: %v", region, year, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		merged.Merge(table)
	}
	return merged, firstErr
}
