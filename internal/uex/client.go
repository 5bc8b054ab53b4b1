// Package uex is the HTTP client for the UEX market-data API. All payload
// normalization happens here: downstream packages only ever see the typed
// Commodity, RankingSignal, and Route structs.
package uex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.uexcorp.space/2.0"

const userAgent = "sc-trade-advisor/1.0"

// Client is a concurrency-limited UEX HTTP client.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	sem     chan struct{}
}

// NewClient creates a UEX client. An empty baseURL selects the public API;
// token may be empty for unauthenticated access.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		token:   token,
		sem:     make(chan struct{}, 10),
	}
}

// HealthCheck pings UEX to verify connectivity.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := c.newRequest(ctx, "/game_versions", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Commodities fetches the full commodity list.
func (c *Client) Commodities(ctx context.Context) ([]Commodity, error) {
	records, err := c.getCollection(ctx, "/commodities", nil)
	if err != nil {
		return nil, err
	}
	out := make([]Commodity, 0, len(records))
	for _, r := range records {
		if commodity, ok := normalizeCommodity(r); ok {
			out = append(out, commodity)
		}
	}
	return out, nil
}

// CommodityRanking fetches the desirability ranking list.
func (c *Client) CommodityRanking(ctx context.Context) ([]RankingSignal, error) {
	records, err := c.getCollection(ctx, "/commodities_ranking", nil)
	if err != nil {
		return nil, err
	}
	out := make([]RankingSignal, 0, len(records))
	for _, r := range records {
		if signal, ok := normalizeRanking(r); ok {
			out = append(out, signal)
		}
	}
	return out, nil
}

// CommodityRoutes fetches all known trade routes for one commodity.
func (c *Client) CommodityRoutes(ctx context.Context, commodityID int64) ([]Route, error) {
	query := url.Values{"id_commodity": {fmt.Sprintf("%d", commodityID)}}
	records, err := c.getCollection(ctx, "/commodities_routes", query)
	if err != nil {
		return nil, err
	}
	out := make([]Route, 0, len(records))
	for _, r := range records {
		out = append(out, normalizeRoute(r, commodityID))
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// getCollection fetches a UEX endpoint and flattens the payload to a record
// list. UEX wraps most collections as {"status": ..., "data": [...]}, but
// some endpoints return the array directly; both shapes are accepted.
func (c *Client) getCollection(ctx context.Context, path string, query url.Values) ([]record, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.sem }()

	req, err := c.newRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("UEX %d %s: %s", resp.StatusCode, path, string(body))
	}

	var payload interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("UEX decode %s: %w", path, err)
	}
	return flatten(payload), nil
}

// flatten normalizes the two payload shapes UEX uses (bare array, or an
// object with a "data" array) into a flat record list.
func flatten(payload interface{}) []record {
	var items []interface{}
	switch p := payload.(type) {
	case []interface{}:
		items = p
	case map[string]interface{}:
		if data, ok := p["data"].([]interface{}); ok {
			items = data
		} else if data, ok := p["data"].(map[string]interface{}); ok {
			// Single-object data payloads become a one-row list.
			items = []interface{}{data}
		}
	}

	out := make([]record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, record(m))
		}
	}
	return out
}
