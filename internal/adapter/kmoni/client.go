// Package kmoni fetches the station directory and realtime intensity
// snapshots from Kyoshin-style upstream endpoints.
package kmoni

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/seislive/intensity-overlay/internal/domain"
)

// ErrDecode wraps malformed upstream payloads so callers can log them at
// warning level and keep polling.
var ErrDecode = errors.New("decode upstream payload")

// StatusError reports a non-OK upstream response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Code, e.URL)
}

// Client talks to the two upstream endpoints. Request deadlines are owned by
// the caller's context; the client sets no timeout of its own because the
// directory and snapshot fetches use different budgets.
type Client struct {
	httpClient *http.Client
	stationURL string
	baseURL    string
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates an upstream client. Pass a nil clock to use the real one.
func NewClient(stationURL, baseURL string, clock clockwork.Clock, logger *slog.Logger) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		httpClient: &http.Client{},
		stationURL: stationURL,
		baseURL:    strings.TrimRight(baseURL, "/"),
		clock:      clock,
		logger:     logger,
	}
}

// FetchStationList retrieves and decodes the station directory.
func (c *Client) FetchStationList(ctx context.Context) (domain.StationList, error) {
	body, err := c.get(ctx, c.stationURL, false)
	if err != nil {
		return nil, err
	}
	list, err := domain.ParseStationList(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return list, nil
}

// FetchSnapshot retrieves the snapshot published at the given instant. The
// request carries a no-cache directive so intermediate caches never serve a
// stale snapshot.
func (c *Client) FetchSnapshot(ctx context.Context, at time.Time) (domain.Snapshot, error) {
	body, err := c.get(ctx, SnapshotURL(c.baseURL, at), true)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap, err := domain.ParseSnapshot(body, c.clock.Now())
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return snap, nil
}

// SnapshotURL builds the day-stamped, second-resolution resource path:
// {base}/RealTimeData/{YYYYMMDD}/{YYYYMMDDHHMMSS}.json. The path is formatted
// in the location of the supplied time; the caller decides the zone the
// upstream publishes in.
func SnapshotURL(base string, at time.Time) string {
	return fmt.Sprintf("%s/RealTimeData/%s/%s.json",
		strings.TrimRight(base, "/"), at.Format("20060102"), at.Format("20060102150405"))
}

func (c *Client) get(ctx context.Context, url string, noCache bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if noCache {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	return body, nil
}
