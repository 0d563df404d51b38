// Package poller drives the realtime snapshot fetch loop: a fixed tick
// cadence, a rate limit across ticks, supersession of in-flight fetches, and
// a latest-value mailbox toward the renderer.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/seislive/intensity-overlay/internal/adapter/kmoni"
	"github.com/seislive/intensity-overlay/internal/appclock"
	"github.com/seislive/intensity-overlay/internal/config"
	"github.com/seislive/intensity-overlay/internal/domain"
	"github.com/seislive/intensity-overlay/internal/observability"
)

// SnapshotFetcher fetches the intensity snapshot published at the given time.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, at time.Time) (domain.Snapshot, error)
}

// Poller repeatedly fetches the most recent available snapshot while enabled.
// At most one fetch is in flight at any time: a new tick cancels the previous
// fetch and waits for it to unwind before issuing the next request, so
// responses always apply in issue order.
type Poller struct {
	fetcher     SnapshotFetcher
	appClock    *appclock.Clock // supplies "application now" for time selection
	clock       clockwork.Clock // drives the tick cadence and the rate limiter
	interval    time.Duration
	minInterval time.Duration
	lag         time.Duration
	timeout     time.Duration
	logger      *slog.Logger
	metrics     *observability.Metrics

	updates chan domain.Snapshot
	enabled atomic.Bool

	mu          sync.Mutex
	lastAttempt time.Time
	cancel      context.CancelFunc
	done        chan struct{} // closed when the in-flight fetch goroutine exits
}

// New creates a Poller. Polling starts enabled.
func New(fetcher SnapshotFetcher, appClock *appclock.Clock, clock clockwork.Clock, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Poller {
	p := &Poller{
		fetcher:     fetcher,
		appClock:    appClock,
		clock:       clock,
		interval:    cfg.PollInterval,
		minInterval: cfg.FetchMinInterval,
		lag:         cfg.TimeLag,
		timeout:     cfg.SnapshotTimeout,
		logger:      logger,
		metrics:     metrics,
		updates:     make(chan domain.Snapshot, 1),
	}
	p.enabled.Store(true)
	return p
}

// Updates returns the latest-value mailbox. A snapshot that has not been
// consumed by the time the next one arrives is replaced, never queued: only
// the most recent snapshot matters.
func (p *Poller) Updates() <-chan domain.Snapshot {
	return p.updates
}

// Enabled reports whether polling is active.
func (p *Poller) Enabled() bool {
	return p.enabled.Load()
}

// SetEnabled toggles polling. Disabling aborts any in-flight fetch so no
// response can land after the consumer stopped caring.
func (p *Poller) SetEnabled(v bool) {
	p.enabled.Store(v)
	if !v {
		p.abortInFlight()
	}
}

// Run ticks until ctx is cancelled. Teardown aborts the in-flight fetch and
// waits for it to unwind before returning.
func (p *Poller) Run(ctx context.Context) error {
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	p.logger.Info("poller started",
		"interval", p.interval, "min_interval", p.minInterval,
		"lag", p.lag, "timeout", p.timeout)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.abortInFlight()
			p.awaitInFlight()
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if !p.enabled.Load() {
				continue
			}
			p.tick(ctx)
		}
	}
}

// tick enforces the rate limit, supersedes the previous fetch, and issues the
// next one. Called only from the Run goroutine.
func (p *Poller) tick(ctx context.Context) {
	now := p.clock.Now()

	p.mu.Lock()
	if !p.lastAttempt.IsZero() && now.Sub(p.lastAttempt) < p.minInterval {
		since := now.Sub(p.lastAttempt)
		p.mu.Unlock()
		p.metrics.SnapshotFetches.WithLabelValues("skipped").Inc()
		p.logger.Debug("snapshot fetch rate-limited", "since_last", since)
		return
	}
	p.lastAttempt = now
	prevCancel := p.cancel
	prevDone := p.done
	p.mu.Unlock()

	// Supersede: cancel the previous fetch and wait for its goroutine to
	// exit before issuing the next request. This keeps at most one request
	// in flight and makes a stale response unable to overwrite a newer one.
	if prevCancel != nil {
		prevCancel()
	}
	if prevDone != nil {
		<-prevDone
	}

	target := p.appClock.Now().Add(-p.lag)
	fetchCtx, fetchCancel := context.WithTimeout(ctx, p.timeout)
	fetchDone := make(chan struct{})

	p.mu.Lock()
	p.cancel = fetchCancel
	p.done = fetchDone
	p.mu.Unlock()

	go func() {
		defer close(fetchDone)
		defer fetchCancel()
		p.fetch(fetchCtx, target)
	}()
}

// fetch performs one snapshot fetch and classifies the outcome. Every failure
// is swallowed here: the loop is never killed, the previous snapshot stays
// displayed, and the next tick retries naturally.
func (p *Poller) fetch(ctx context.Context, target time.Time) {
	start := p.clock.Now()
	snap, err := p.fetcher.FetchSnapshot(ctx, target)
	if err != nil {
		p.observeFetchError(err, target)
		return
	}

	p.metrics.SnapshotFetches.WithLabelValues("success").Inc()
	p.metrics.SnapshotFetchDuration.Observe(p.clock.Now().Sub(start).Seconds())
	p.deliver(snap)
	p.logger.Debug("snapshot fetched", "target", target, "codes", len(snap.Codes))
}

func (p *Poller) observeFetchError(err error, target time.Time) {
	var statusErr *kmoni.StatusError
	switch {
	case errors.Is(err, context.Canceled):
		p.metrics.SnapshotFetches.WithLabelValues("aborted").Inc()
		p.logger.Info("snapshot fetch superseded", "target", target)
	case errors.Is(err, context.DeadlineExceeded):
		p.metrics.SnapshotFetches.WithLabelValues("aborted").Inc()
		p.logger.Info("snapshot fetch timed out", "target", target)
	case errors.As(err, &statusErr):
		p.metrics.SnapshotFetches.WithLabelValues("upstream_error").Inc()
		p.logger.Warn("snapshot fetch upstream error", "status", statusErr.Code, "target", target)
	case errors.Is(err, kmoni.ErrDecode):
		p.metrics.SnapshotFetches.WithLabelValues("decode_error").Inc()
		p.logger.Warn("malformed snapshot payload", "error", err, "target", target)
	default:
		p.metrics.SnapshotFetches.WithLabelValues("error").Inc()
		p.logger.Error("snapshot fetch failed", "error", err, "target", target)
	}
}

// deliver replaces any unconsumed snapshot in the mailbox with the new one.
func (p *Poller) deliver(snap domain.Snapshot) {
	for {
		select {
		case p.updates <- snap:
			return
		default:
			select {
			case <-p.updates:
			default:
			}
		}
	}
}

func (p *Poller) abortInFlight() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Poller) awaitInFlight() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}
