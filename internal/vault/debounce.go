package vault

import "time"

// Coalescer collapses bursts of change events into at most two refreshes:
// one on the leading edge of the burst and one trailing refresh once the
// burst has been quiet for the window.
//
// It holds no timers. Callers schedule a tick for the returned sequence
// number and call Flush when it fires, which keeps it usable from a
// single-threaded update loop.
type Coalescer struct {
	window  time.Duration
	last    time.Time
	seq     int
	pending bool
}

// NewCoalescer returns a Coalescer with the given quiet window.
func NewCoalescer(window time.Duration) *Coalescer {
	return &Coalescer{window: window}
}

// Window returns the quiet window.
func (c *Coalescer) Window() time.Duration { return c.window }

// Observe records an event at now. immediate is true when the event starts
// a new burst and should be applied right away. seq identifies the trailing
// flush to schedule.
func (c *Coalescer) Observe(now time.Time) (immediate bool, seq int) {
	c.seq++
	immediate = c.last.IsZero() || now.Sub(c.last) >= c.window
	if !immediate {
		c.pending = true
	}
	c.last = now
	return immediate, c.seq
}

// Flush reports whether the trailing refresh for seq should run. Only the
// newest sequence flushes, and only when events arrived after the leading
// edge.
func (c *Coalescer) Flush(seq int) bool {
	if seq != c.seq || !c.pending {
		return false
	}
	c.pending = false
	return true
}
