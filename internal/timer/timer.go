// Package timer defines the scheduling contract shared by every stage.
//
// All callbacks run on the single event goroutine that owns the Scheduler, so
// code reached from a callback never needs locks. A stopped Handle guarantees
// its callback will not run again, even if the underlying tick is already in
// flight.
package timer

import "time"

// Handle cancels a scheduled callback.
type Handle interface {
	// Stop prevents any future invocation. It reports whether the timer was
	// still pending.
	Stop() bool
}

// Scheduler runs callbacks after a delay or on a fixed interval.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Handle
	EveryFunc(d time.Duration, f func()) Handle
	Now() time.Time
}

// Group collects the handles owned by one scope so they can be cancelled
// together on exit. The zero value is ready to use.
type Group struct {
	handles []Handle
}

// Add tracks h and returns it.
func (g *Group) Add(h Handle) Handle {
	g.handles = append(g.handles, h)
	return h
}

// StopAll stops every tracked handle and forgets them.
func (g *Group) StopAll() {
	for _, h := range g.handles {
		h.Stop()
	}
	g.handles = nil
}

// Len returns the number of tracked handles.
func (g *Group) Len() int {
	return len(g.handles)
}

// Stop stops h if it is non-nil and returns nil, for the common
// `t.handle = timer.Stop(t.handle)` reset.
func Stop(h Handle) Handle {
	if h != nil {
		h.Stop()
	}
	return nil
}
