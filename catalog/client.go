// file: catalog/client.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Fetcher retrieves raw events between now and the configured lookahead.
type Fetcher interface {
	FetchEvents(ctx context.Context, limit int, now time.Time) ([]RawEvent, error)
}

// Client calls the catalog API.
type Client struct {
	endpoint   string
	userAgent  string
	lookahead  time.Duration
	httpClient *http.Client
	tracing    bool
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithTracing records every outbound call as an X-Ray segment.
func WithTracing() ClientOption {
	return func(c *Client) {
		c.tracing = true
		c.httpClient = xray.Client(c.httpClient)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a catalog client. timeout bounds each request.
func NewClient(endpoint, userAgent string, timeout, lookahead time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		userAgent:  userAgent,
		lookahead:  lookahead,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchEvents issues GET endpoint?limit=&start=&finish= with epoch-second bounds.
func (c *Client) FetchEvents(ctx context.Context, limit int, now time.Time) (events []RawEvent, err error) {
	if c.tracing {
		var seg *xray.Segment
		ctx, seg = xray.BeginSegment(ctx, "catalog-fetch")
		defer func() { seg.Close(err) }()
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("catalog endpoint: %w", err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("start", strconv.FormatInt(now.Unix(), 10))
	q.Set("finish", strconv.FormatInt(now.Add(c.lookahead).Unix(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	return events, nil
}
