package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock is a source of monotonic time. Readings are only meaningful relative to each
// other.
type Clock interface {
	Now() time.Duration
}

var epoch = time.Now()

// System reads the monotonic clock on every call.
type System struct{}

func (System) Now() time.Duration {
	return time.Since(epoch)
}

// Coarse caches the monotonic time and refreshes it every resolution tick. Reading it is
// a single atomic load, which pays off when thousands of connections are ticked in a
// loop.
type Coarse struct {
	now        atomic.Int64
	resolution time.Duration
	stop       chan struct{}
	done       sync.WaitGroup
}

// NewCoarse starts the updater goroutine. Stop must be called to release it.
func NewCoarse(resolution time.Duration) *Coarse {
	c := &Coarse{
		resolution: resolution,
		stop:       make(chan struct{}),
	}
	// the value must be valid even before the goroutine gets scheduled
	c.now.Store(int64(time.Since(epoch)))
	c.done.Add(1)
	go c.run()

	return c
}

func (c *Coarse) run() {
	defer c.done.Done()

	ticker := time.NewTicker(c.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.now.Store(int64(time.Since(epoch)))
		}
	}
}

func (c *Coarse) Now() time.Duration {
	return time.Duration(c.now.Load())
}

// Stop terminates the updater and waits until it exits. The clock freezes afterwards.
func (c *Coarse) Stop() {
	close(c.stop)
	c.done.Wait()
}

// Manual only moves when told to.
type Manual struct {
	now time.Duration
}

func NewManual() *Manual {
	return new(Manual)
}

func (m *Manual) Now() time.Duration {
	return m.now
}

func (m *Manual) Advance(d time.Duration) {
	m.now += d
}
