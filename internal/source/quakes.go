package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/skyfleet/balloon-quake-aggregation/internal/quake"
)

// DefaultQuakeFeedURL is the USGS all-day GeoJSON summary feed.
const DefaultQuakeFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_day.geojson"

// QuakeClient fetches the earthquake feature collection.
type QuakeClient struct {
	feedURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewQuakeClient builds a client for the earthquake feed.
func NewQuakeClient(client *http.Client, feedURL string, backoff BackoffConfig) *QuakeClient {
	if feedURL == "" {
		feedURL = DefaultQuakeFeedURL
	}
	return &QuakeClient{
		feedURL: feedURL,
		httpCfg: HTTPClientConfig{Client: client, Backoff: backoff},
		circuit: newBreaker("quakes"),
	}
}

// Fetch retrieves and normalizes the current quake feed. Any failure is the
// caller's signal to run the cycle with zero quakes; "no earthquakes this
// cycle" is a valid, non-error state downstream.
func (c *QuakeClient) Fetch(ctx context.Context) ([]quake.Quake, error) {
	resp, err := doRequest(ctx, c.httpCfg, c.circuit, c.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch quake feed: %w", err)
	}
	defer resp.Body.Close()

	var fc quake.FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode quake feed: %w", err)
	}
	return quake.Normalize(fc), nil
}
