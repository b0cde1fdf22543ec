package pool

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"github.com/indigo-web/nbclient/client"
	"github.com/indigo-web/nbclient/config"
	"github.com/indigo-web/nbclient/conn"
	"github.com/indigo-web/nbclient/internal/timer"
	"github.com/indigo-web/nbclient/logging"
	"github.com/indigo-web/nbclient/transport"
	"github.com/rs/zerolog"
)

var (
	ErrExhausted = errors.New("no connection is available and the queue is full")
	ErrClosed    = errors.New("pool is closed")
)

// Pool spreads requests over a fixed number of connections, reusing the idle ones
// connected to the same address. It is safe for concurrent use, but completion
// callbacks are called with the pool locked, so they must not call into the pool.
type Pool struct {
	mu          sync.Mutex
	cfg         *config.Config
	clock       timer.Clock
	sink        logging.Sink
	logger      zerolog.Logger
	newResponse conn.ResponseFactory
	slots       []*slot
	queue       []pending
	closed      bool
}

type pending struct {
	addr netip.AddrPort
	req  conn.Request
}

type Option func(*Pool)

// WithClock replaces the clock of the pool and all its connections.
func WithClock(clock timer.Clock) Option {
	return func(p *Pool) {
		p.clock = clock
	}
}

// WithSink makes connections report their transitions into the sink.
func WithSink(sink logging.Sink) Option {
	return func(p *Pool) {
		p.sink = sink
	}
}

// WithLogger sets the logger for the events of the pool itself.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithResponses overrides the responses requests are paired with. By default,
// client.Response is used, and it is the only one a client.Request can be completed with.
func WithResponses(newResponse conn.ResponseFactory) Option {
	return func(p *Pool) {
		p.newResponse = newResponse
	}
}

func New(cfg *config.Config, factory transport.Factory, opts ...Option) *Pool {
	p := &Pool{
		cfg:         cfg,
		clock:       timer.System{},
		sink:        logging.Nop{},
		logger:      zerolog.Nop(),
		newResponse: client.NewResponseFactory(cfg),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.slots = make([]*slot, cfg.Pool.Size)
	for i := range p.slots {
		p.slots[i] = newSlot(cfg.Pool.Backoff, conn.New(factory, p.newResponse,
			conn.WithConfig(cfg),
			conn.WithClock(p.clock),
			conn.WithSink(p.sink),
		))
	}

	return p
}

// Do hands the request over to the pool. If no connection can take it right away,
// it is queued and placed by later ticks in the order of arrival. On error, the caller
// keeps the ownership of the request; otherwise it is completed exactly once, including
// the case when it turns out to be malformed.
func (p *Pool) Do(addr netip.AddrPort, req conn.Request) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	if len(p.queue) == 0 {
		if placed, err := p.place(addr, req); placed || err != nil {
			return err
		}
	}

	if len(p.queue) >= p.cfg.Pool.QueueSize {
		return ErrExhausted
	}

	p.queue = append(p.queue, pending{addr: addr, req: req})
	p.logger.Debug().
		Stringer("addr", addr).
		Int("queued", len(p.queue)).
		Msg("no connection is available, queueing the request")

	return nil
}

// place tries to submit the request, preferring connections that are already there.
// A submitted request counts as placed, even if the submission failed, as the request
// is completed by the connection then. The error is returned only if the request was
// not placed because a connection could not be established.
func (p *Pool) place(addr netip.AddrPort, req conn.Request) (placed bool, err error) {
	for _, s := range p.slots {
		if s.conn.State() == conn.Waiting && s.conn.CompareAddr(addr) {
			p.submit(s, req)
			return true, nil
		}
	}

	for _, s := range p.slots {
		if s.conn.State() == conn.Connecting && !s.conn.InFlight() && s.conn.CompareAddr(addr) {
			p.submit(s, req)
			return true, nil
		}
	}

	now := p.clock.Now()
	target := p.vacant(now)
	if target == nil {
		return false, nil
	}

	if target.conn.State() == conn.Waiting {
		// the least recently used idle connection gives way to a new address
		target.conn.Close()
	}

	if err = target.conn.Connect(addr); err != nil {
		p.failed(target, err)
		return false, err
	}

	p.submit(target, req)
	return true, nil
}

func (p *Pool) submit(s *slot, req conn.Request) {
	if err := s.conn.Submit(req); err != nil {
		p.logger.Debug().
			Err(err).
			Str("conn", s.conn.ID()).
			Msg("request was rejected")
	}
}

// vacant returns an Offline slot ready to connect or, if there is none, the longest
// idle connection.
func (p *Pool) vacant(now time.Duration) *slot {
	var idle *slot

	for _, s := range p.slots {
		switch s.conn.State() {
		case conn.Offline:
			if s.ready(now) {
				return s
			}
		case conn.Waiting:
			if idle == nil || s.conn.Idle() > idle.conn.Idle() {
				idle = s
			}
		}
	}

	return idle
}

// Tick ticks every connection once and then tries to place the queued requests.
func (p *Pool) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.slots {
		before, busy := s.conn.State(), s.conn.InFlight()
		err := s.conn.Tick()

		switch after := s.conn.State(); {
		case err != nil:
			if before == conn.Waiting && errors.Is(err, conn.ErrTimeout) {
				// expiring idle connections is business as usual
				continue
			}

			p.failed(s, err)
		case before == conn.Connecting && after != conn.Connecting && after != conn.Offline:
			s.backoff.Reset()
		case busy && !s.conn.InFlight():
			s.served++
			s.backoff.Reset()
		}
	}

	p.drain()
}

func (p *Pool) drain() {
	if len(p.queue) == 0 {
		return
	}

	rest := p.queue[:0]
	for _, pend := range p.queue {
		placed, err := p.place(pend.addr, pend.req)
		switch {
		case err != nil && !placed:
			abandon(pend.req, err)
		case !placed:
			rest = append(rest, pend)
		}
	}

	clear(p.queue[len(rest):])
	p.queue = rest
}

func (p *Pool) failed(s *slot, err error) {
	s.failures++
	delay := s.backoff.Duration()
	s.notBefore = p.clock.Now() + delay

	p.logger.Warn().
		Err(err).
		Str("conn", s.conn.ID()).
		Dur("backoff", delay).
		Msg("connection failed")
}

// Run ticks the pool with the interval until the context is done. The pool is closed
// on return.
func (p *Pool) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer p.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Tick()
		}
	}
}

// Close closes all the connections. Queued requests are completed with ErrClosed.
// Closing a closed pool is no-op.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true
	for _, s := range p.slots {
		s.conn.Close()
	}

	for _, pend := range p.queue {
		abandon(pend.req, ErrClosed)
	}

	p.queue = nil
}

// CloseIdle closes connections that have nothing to do. The rest is left untouched.
func (p *Pool) CloseIdle() (closed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.slots {
		if s.conn.State() == conn.Waiting {
			s.conn.Close()
			closed++
		}
	}

	return closed
}

// Queued returns the number of requests waiting for a connection.
func (p *Pool) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.queue)
}

// abandon completes a request the pool took over but could never submit.
func abandon(req conn.Request, err error) {
	req.Complete(nil, fmt.Errorf("pool: %w", err))
	if r, ok := req.(conn.Releaser); ok {
		r.Release()
	}
}
