package pool

import (
	"time"

	"github.com/indigo-web/nbclient/config"
	"github.com/indigo-web/nbclient/conn"
	"github.com/jpillora/backoff"
)

type slot struct {
	conn    *conn.Connection
	backoff *backoff.Backoff
	// notBefore is the clock reading before which the slot must not connect again.
	notBefore time.Duration
	served    uint64
	failures  uint64
}

func newSlot(cfg config.PoolBackoff, c *conn.Connection) *slot {
	return &slot{
		conn: c,
		backoff: &backoff.Backoff{
			Min:    cfg.Min,
			Max:    cfg.Max,
			Factor: cfg.Factor,
			Jitter: cfg.Jitter,
		},
	}
}

func (s *slot) ready(now time.Duration) bool {
	return now >= s.notBefore
}

// SlotStat is a snapshot of a single connection of the pool.
type SlotStat struct {
	ID       string
	State    conn.State
	Addr     string
	InFlight bool
	Idle     time.Duration
	Served   uint64
	Failures uint64
	// Backoff is how long the slot is still prevented from connecting.
	Backoff time.Duration
}

// Stats returns snapshots of all the connections, in a stable order.
func (p *Pool) Stats() []SlotStat {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	stats := make([]SlotStat, len(p.slots))
	for i, s := range p.slots {
		stats[i] = SlotStat{
			ID:       s.conn.ID(),
			State:    s.conn.State(),
			InFlight: s.conn.InFlight(),
			Idle:     s.conn.Idle(),
			Served:   s.served,
			Failures: s.failures,
			Backoff:  max(0, s.notBefore-now),
		}

		if addr, ok := s.conn.Addr(); ok {
			stats[i].Addr = addr.String()
		}
	}

	return stats
}
