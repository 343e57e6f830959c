// Package routing provides travel-time estimators backed by an external
// routing provider.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/medispatch/engine/auth"
	coremetrics "github.com/medispatch/engine/core/metrics"
	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/infra/logger"
)

// Config holds the routing provider settings.
type Config struct {
	BaseURL        string    `json:"base_url"`
	TimeoutSeconds int       `json:"timeout_seconds"`
	Auth           auth.Conf `json:"auth"`
}

// Client queries a routing provider over HTTP. It implements
// eta.RouteEstimator.
type Client struct {
	baseURL string
	http    *http.Client
	cred    *auth.ClientCred
	sink    coremetrics.MetricsSink
	log     logger.Logger
}

// NewClient creates a routing client. When cfg.Auth.AuthURL is empty the
// provider is assumed to be unauthenticated.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("routing: base url is required")
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 5
	}
	c := &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:     logger.New("routing-client"),
	}
	if cfg.Auth.AuthURL != "" {
		c.cred = auth.NewClientCred(cfg.Auth)
	}
	return c, nil
}

// SetMetricsSink configures latency recording. A nil sink disables it.
func (c *Client) SetMetricsSink(sink coremetrics.MetricsSink) {
	c.sink = sink
}

type routeResponse struct {
	DurationSeconds float64 `json:"duration_seconds"`
}

// EstimateTravelTime returns the provider's estimated travel time in
// minutes between origin and dest.
func (c *Client) EstimateTravelTime(ctx context.Context, origin, dest model.Location, priority model.CallType) (float64, error) {
	q := url.Values{}
	q.Set("from_lat", strconv.FormatFloat(origin.Lat, 'f', -1, 64))
	q.Set("from_lon", strconv.FormatFloat(origin.Lon, 'f', -1, 64))
	q.Set("to_lat", strconv.FormatFloat(dest.Lat, 'f', -1, 64))
	q.Set("to_lon", strconv.FormatFloat(dest.Lon, 'f', -1, 64))
	if priority.IsEmergent() {
		q.Set("profile", "priority")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/route?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	if c.cred != nil {
		if err := c.cred.SetAuthHeader(ctx, req); err != nil {
			return 0, fmt.Errorf("routing: auth: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := time.Since(start)
	c.recordLatency(latency, err != nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("routing: provider returned %s", resp.Status)
	}

	var rr routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return 0, fmt.Errorf("routing: decode response: %w", err)
	}
	if rr.DurationSeconds < 0 {
		return 0, fmt.Errorf("routing: negative duration %f", rr.DurationSeconds)
	}
	return rr.DurationSeconds / 60, nil
}

func (c *Client) recordLatency(latency time.Duration, failed bool) {
	if c.sink == nil {
		return
	}
	if rec, ok := c.sink.(coremetrics.RoutingLatencyRecorder); ok {
		_ = rec.RecordRoutingLatency([]coremetrics.RoutingLatency{{
			Fallback: failed,
			Latency:  latency,
			Time:     time.Now(),
		}})
	}
}
