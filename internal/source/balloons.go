package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/skyfleet/balloon-quake-aggregation/internal/track"
)

// DefaultBalloonBaseURL serves one JSON snapshot per lookback hour:
// <base>/00.json is the current hour, <base>/23.json the oldest.
const DefaultBalloonBaseURL = "https://a.windbornesystems.com/treasure"

// BalloonClient fetches hourly position frames from the balloon upstream.
type BalloonClient struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	clock   clockwork.Clock
}

// NewBalloonClient builds a client for the position snapshot source.
func NewBalloonClient(client *http.Client, baseURL string, backoff BackoffConfig, clock clockwork.Clock) *BalloonClient {
	if baseURL == "" {
		baseURL = DefaultBalloonBaseURL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &BalloonClient{
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{Client: client, Backoff: backoff},
		circuit: newBreaker("balloons"),
		clock:   clock,
	}
}

// FetchFrame fetches the snapshot for hoursAgo lookback units in the past
// (0 = current hour). The frame's nominal timestamp is the wall-clock hour
// the snapshot represents, regardless of when the fetch completes. Malformed
// bodies surface as errors so the caller can exclude the frame.
func (c *BalloonClient) FetchFrame(ctx context.Context, hoursAgo int) (track.Frame, error) {
	tag := fmt.Sprintf("%02d.json", hoursAgo)
	frame := track.Frame{
		Tag: tag,
		At:  c.clock.Now().UTC().Truncate(time.Hour).Add(-time.Duration(hoursAgo) * time.Hour),
	}

	resp, err := doRequest(ctx, c.httpCfg, c.circuit, c.baseURL+"/"+tag)
	if err != nil {
		return frame, fmt.Errorf("fetch frame %s: %w", tag, err)
	}
	defer resp.Body.Close()

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return frame, fmt.Errorf("decode frame %s: %w", tag, err)
	}

	frame.Records = track.RecordsFrom(payload)
	return frame, nil
}
