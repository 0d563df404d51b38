// Package directory caches the station coordinate list for the life of the
// process. The upstream directory is static, so one successful fetch serves
// every consumer; the loader is a single shared instance injected wherever
// stations are needed.
package directory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/seislive/intensity-overlay/internal/domain"
	"github.com/seislive/intensity-overlay/internal/observability"
)

// StationFetcher fetches the station directory from upstream.
type StationFetcher interface {
	FetchStationList(ctx context.Context) (domain.StationList, error)
}

// Loader guards the shared directory cache. At most one fetch is in flight at
// a time; concurrent loads short-circuit to the current cache.
type Loader struct {
	fetcher StationFetcher
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics

	mu       sync.Mutex
	stations domain.StationList
	fetching bool
}

// NewLoader creates a directory loader with the given fetch timeout.
func NewLoader(fetcher StationFetcher, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		fetcher: fetcher,
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Stations returns the cached directory without touching the network. Empty
// until the first successful Load.
func (l *Loader) Stations() domain.StationList {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stations
}

// Load returns the cached directory, fetching it first if the cache is empty.
// A fetch already in progress short-circuits: the caller gets the current
// (possibly empty) cache and the in-flight fetch fills it for the next caller.
// Failures leave the cache empty and are logged; the next Load retries, so a
// transient upstream outage only delays the overlay.
func (l *Loader) Load(ctx context.Context) domain.StationList {
	l.mu.Lock()
	if len(l.stations) > 0 || l.fetching {
		cached := l.stations
		l.mu.Unlock()
		return cached
	}
	l.fetching = true
	l.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	stations, err := l.fetcher.FetchStationList(fetchCtx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetching = false

	if err != nil {
		l.metrics.DirectoryFetches.WithLabelValues("error").Inc()
		l.logger.Warn("station directory fetch failed", "error", err)
		return l.stations
	}

	l.stations = stations
	l.metrics.DirectoryFetches.WithLabelValues("success").Inc()
	l.metrics.DirectoryStations.Set(float64(len(stations)))
	l.logger.Info("station directory loaded", "stations", len(stations))
	return stations
}
