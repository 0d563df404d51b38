// Package appclock provides the application time source: a clockwork-backed
// clock with a mutable offset. It stands in for the host-supplied global time
// reference the overlay originally read at each tick, reimplemented as an
// explicitly injected shared object.
package appclock

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock yields application time: base clock time plus an adjustable offset.
// Safe for concurrent use; the offset is the only mutable state.
type Clock struct {
	base   clockwork.Clock
	offset atomic.Int64 // nanoseconds
}

// New creates an application clock over the given base. Pass nil to use the
// real clock.
func New(base clockwork.Clock) *Clock {
	if base == nil {
		base = clockwork.NewRealClock()
	}
	return &Clock{base: base}
}

// Now returns the current application time.
func (c *Clock) Now() time.Time {
	return c.base.Now().Add(time.Duration(c.offset.Load()))
}

// SetOffset replaces the offset applied to the base clock.
func (c *Clock) SetOffset(d time.Duration) {
	c.offset.Store(int64(d))
}

// Offset returns the currently applied offset.
func (c *Clock) Offset() time.Duration {
	return time.Duration(c.offset.Load())
}
