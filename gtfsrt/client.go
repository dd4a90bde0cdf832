package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

const (
	// DefaultBaseURL is the Auckland Transport API root.
	DefaultBaseURL = "https://api.at.govt.nz/v2"

	TripUpdatesPath      = "/public/realtime/tripupdates"
	VehiclePositionsPath = "/public/realtime/vehiclelocations"

	// APIKeyHeader carries the subscription key on every request.
	APIKeyHeader = "Ocp-Apim-Subscription-Key"
)

// Feed names used in errors, logs and metrics.
const (
	FeedTripUpdates      = "trip updates"
	FeedVehiclePositions = "vehicle positions"
)

// Filter narrows a request to specific trips or vehicles. An empty Filter
// returns everything.
type Filter struct {
	TripIDs    []string
	VehicleIDs []string
}

// FetchHook observes every request, e.g. to record metrics.
type FetchHook func(feed string, elapsed time.Duration, err error)

// Client fetches the AT realtime feeds.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	tuPath     string
	vpPath     string
	hook       FetchHook
}

type ClientOption func(*Client)

func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithFeedPaths overrides the endpoint paths. Empty values keep the defaults.
func WithFeedPaths(tripUpdates, vehiclePositions string) ClientOption {
	return func(c *Client) {
		if tripUpdates != "" {
			c.tuPath = tripUpdates
		}
		if vehiclePositions != "" {
			c.vpPath = vehiclePositions
		}
	}
}

func WithFetchHook(h FetchHook) ClientOption {
	return func(c *Client) { c.hook = h }
}

// NewClient creates a client authenticating with apiKey.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		tuPath:     TripUpdatesPath,
		vpPath:     VehiclePositionsPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRaw performs a GET on path and returns the body. Any failure to obtain
// a 200 response is a *TransportError.
func (c *Client) FetchRaw(ctx context.Context, feed, path string, filter Filter) ([]byte, error) {
	url := buildQuery(c.baseURL+path, filter)
	start := time.Now()

	body, err := c.get(ctx, feed, url)
	if c.hook != nil {
		c.hook(feed, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	log.Debug().Str("feed", feed).Int("bytes", len(body)).Dur("elapsed", time.Since(start)).Msg("Fetched realtime feed")
	return body, nil
}

func (c *Client) get(ctx context.Context, feed, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Feed: feed, URL: url, Err: err}
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Feed: feed, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Feed: feed, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Feed: feed, URL: url, Err: err}
	}
	return body, nil
}

func (c *Client) fetchEnvelope(ctx context.Context, feed, path string, filter Filter) (*Envelope, error) {
	body, err := c.FetchRaw(ctx, feed, path, filter)
	if err != nil {
		return nil, err
	}
	env, err := Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", feed, err)
	}
	if env.Failed() {
		return nil, &TransportError{Feed: feed, URL: c.baseURL + path, Err: fmt.Errorf("upstream status %q: %s", env.Status, env.Error)}
	}
	return env, nil
}

// FetchTripUpdates fetches and decodes the trip-updates feed.
func (c *Client) FetchTripUpdates(ctx context.Context, filter Filter) (*Envelope, error) {
	return c.fetchEnvelope(ctx, FeedTripUpdates, c.tuPath, filter)
}

// FetchVehiclePositions fetches and decodes the vehicle-positions feed.
func (c *Client) FetchVehiclePositions(ctx context.Context, filter Filter) (*Envelope, error) {
	return c.fetchEnvelope(ctx, FeedVehiclePositions, c.vpPath, filter)
}

// FetchCombined fetches both feeds concurrently and merges them. If either
// request fails the other is cancelled and no merge is attempted.
func (c *Client) FetchCombined(ctx context.Context, filter Filter, opts ...MergeOption) (*Combined, error) {
	var tu, vp *Envelope

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		tu, err = c.FetchTripUpdates(ctx, filter)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		vp, err = c.FetchVehiclePositions(ctx, filter)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return Merge(tu, vp, opts...)
}

// buildQuery appends filter parameters to url. The AT API requires the ids
// to be comma separated and rejects escaped commas, so url.Values is not used.
func buildQuery(url string, filter Filter) string {
	var params []string
	if len(filter.TripIDs) > 0 {
		params = append(params, "tripid="+strings.Join(filter.TripIDs, ","))
	}
	if len(filter.VehicleIDs) > 0 {
		params = append(params, "vehicleid="+strings.Join(filter.VehicleIDs, ","))
	}
	if len(params) == 0 {
		return url
	}
	return url + "?" + strings.Join(params, "&")
}
