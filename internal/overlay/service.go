// Package overlay holds the rendered overlay state. It consumes snapshot
// updates from the poller's mailbox, recomputes the feature collection, and
// serves it to HTTP readers and the optional Kafka publisher. Applying on the
// renderer's next cycle (rather than inside the fetch callback) batches
// updates the way the original animation-frame deferral did.
package overlay

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/seislive/intensity-overlay/internal/directory"
	"github.com/seislive/intensity-overlay/internal/domain"
	"github.com/seislive/intensity-overlay/internal/observability"
)

// Publisher delivers each rendered overlay to a downstream consumer.
type Publisher interface {
	PublishOverlay(ctx context.Context, fc domain.FeatureCollection, snap domain.Snapshot) error
}

// TimeSink receives the human-readable timestamp of each applied snapshot.
type TimeSink func(formatted string)

// FetchControl forwards the enabled flag to the fetch loop so disabling the
// overlay also stops and aborts polling.
type FetchControl interface {
	SetEnabled(bool)
}

// Service owns the current overlay. One Run goroutine is the sole writer;
// readers go through the accessor methods.
type Service struct {
	dir       *directory.Loader
	updates   <-chan domain.Snapshot
	publisher Publisher    // nil disables publishing
	timeSink  TimeSink     // nil disables time reporting
	fetch     FetchControl // nil in tests that drive the mailbox directly
	logger    *slog.Logger
	metrics   *observability.Metrics

	enabled atomic.Bool
	ready   atomic.Bool

	mu          sync.RWMutex
	current     domain.FeatureCollection
	displayTime string
}

// NewService creates the overlay service. The overlay starts enabled and
// empty.
func NewService(dir *directory.Loader, updates <-chan domain.Snapshot, publisher Publisher, timeSink TimeSink, fetch FetchControl, logger *slog.Logger, metrics *observability.Metrics) *Service {
	s := &Service{
		dir:       dir,
		updates:   updates,
		publisher: publisher,
		timeSink:  timeSink,
		fetch:     fetch,
		logger:    logger,
		metrics:   metrics,
		current:   domain.EmptyOverlay(),
	}
	s.enabled.Store(true)
	return s
}

// Run applies snapshot updates until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("overlay service stopping", "reason", ctx.Err())
			return nil
		case snap := <-s.updates:
			s.apply(ctx, snap)
		}
	}
}

// apply recomputes the overlay from scratch for one snapshot.
func (s *Service) apply(ctx context.Context, snap domain.Snapshot) {
	stations := s.dir.Load(ctx)
	fc := domain.Project(s.enabled.Load(), stations, &snap)
	formatted := snap.FormatDisplayTime()

	s.mu.Lock()
	s.current = fc
	s.displayTime = formatted
	s.mu.Unlock()

	s.ready.Store(true)
	s.metrics.OverlaysRendered.Inc()
	s.metrics.RenderedFeatures.Set(float64(len(fc.Features)))

	if s.timeSink != nil {
		s.timeSink(formatted)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishOverlay(ctx, fc, snap); err != nil {
			s.metrics.PublishErrors.Inc()
			s.logger.Warn("overlay publish failed", "error", err)
		} else {
			s.metrics.OverlaysPublished.Inc()
		}
	}

	s.logger.Debug("overlay applied", "features", len(fc.Features), "display_time", formatted)
}

// Overlay returns the latest rendered overlay, or an empty collection while
// disabled.
func (s *Service) Overlay() domain.FeatureCollection {
	if !s.enabled.Load() {
		return domain.EmptyOverlay()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// DisplayTime returns the formatted timestamp of the last applied snapshot,
// empty until the first one arrives.
func (s *Service) DisplayTime() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayTime
}

// Stations exposes the cached station directory.
func (s *Service) Stations() domain.StationList {
	return s.dir.Stations()
}

// Enabled reports whether the overlay is enabled.
func (s *Service) Enabled() bool {
	return s.enabled.Load()
}

// SetEnabled toggles the overlay and forwards the flag to the fetch loop.
func (s *Service) SetEnabled(v bool) {
	s.enabled.Store(v)
	if s.fetch != nil {
		s.fetch.SetEnabled(v)
	}
	s.logger.Info("overlay toggled", "enabled", v)
}

// CheckReadiness returns nil once at least one snapshot has been applied.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errNotReady
	}
	return nil
}

var errNotReady = errors.New("no snapshot applied yet")
