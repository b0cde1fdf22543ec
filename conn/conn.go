package conn

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/nbclient/config"
	"github.com/indigo-web/nbclient/internal/timer"
	"github.com/indigo-web/nbclient/logging"
	"github.com/indigo-web/nbclient/transport"
)

// Connection drives a single HTTP/1.1 connection through connect, send, receive and idle
// keep-alive. It never blocks: all the progress is made by Tick, which does at most one
// non-blocking I/O attempt per call.
//
// A connection is not safe for concurrent use. Different connections are independent.
type Connection struct {
	id          string
	stage       stage
	lastAction  time.Duration
	clock       timer.Clock
	sink        logging.Sink
	factory     transport.Factory
	newResponse ResponseFactory
	buff        []byte
	chunkSize   int
	activity    time.Duration
	idle        time.Duration
}

type Option func(*Connection)

// WithConfig applies chunk size and timeouts from the config.
func WithConfig(cfg *config.Config) Option {
	return func(c *Connection) {
		c.chunkSize = cfg.NET.ChunkSize
		c.activity = cfg.NET.ActivityTimeout
		c.idle = cfg.NET.IdleTimeout
	}
}

func WithClock(clock timer.Clock) Option {
	return func(c *Connection) {
		c.clock = clock
	}
}

func WithSink(sink logging.Sink) Option {
	return func(c *Connection) {
		c.sink = sink
	}
}

// WithID overrides the randomly generated identifier.
func WithID(id string) Option {
	return func(c *Connection) {
		c.id = id
	}
}

// New returns an Offline connection. Sockets are created by the factory, and every
// accepted request is paired with a response produced by newResponse for it.
func New(factory transport.Factory, newResponse ResponseFactory, opts ...Option) *Connection {
	c := &Connection{
		id:          uniuri.NewLen(8),
		stage:       offline{},
		clock:       timer.System{},
		sink:        logging.Nop{},
		factory:     factory,
		newResponse: newResponse,
	}
	WithConfig(config.Default())(c)

	for _, opt := range opts {
		opt(c)
	}

	c.buff = make([]byte, c.chunkSize)

	return c
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) State() State {
	return c.stage.state()
}

// Addr returns the peer address. It is absent only when Offline.
func (c *Connection) Addr() (netip.AddrPort, bool) {
	lnk, _ := detach(c.stage)
	if lnk == nil {
		return netip.AddrPort{}, false
	}

	return lnk.addr, true
}

// CompareAddr reports whether the connection is (being) established to the address.
func (c *Connection) CompareAddr(addr netip.AddrPort) bool {
	current, ok := c.Addr()
	return ok && current == addr
}

// InFlight reports whether a request is currently owned by the connection.
func (c *Connection) InFlight() bool {
	_, ex := detach(c.stage)
	return ex != nil
}

// Idle returns how much time passed since the last I/O progress or state change.
func (c *Connection) Idle() time.Duration {
	if c.State() == Offline {
		return 0
	}

	return c.clock.Now() - c.lastAction
}

// Connect starts connecting to the address. It fails if the connection isn't Offline.
func (c *Connection) Connect(addr netip.AddrPort) error {
	if c.State() != Offline {
		return ErrNotOffline
	}

	sock, err := c.factory.NewSocket(addr)
	if err != nil {
		return c.apply(fail("could not create socket", wrap(ErrSocket, err)))
	}

	if err = sock.Connect(addr); err != nil {
		_ = sock.Close()
		return c.apply(fail("could not connect", wrap(ErrConnect, err)))
	}

	c.touch()
	c.stage = connecting{link: link{sock: sock, addr: addr}}
	c.emit(Offline, Connecting, fmt.Sprintf("connecting to %s", addr), nil)

	return nil
}

// Submit hands the request over to the connection. It is accepted only while Connecting
// without a request, or Waiting. On rejection the caller keeps the ownership of the
// request; otherwise the request is completed exactly once, including the case when
// Submit itself returns an error.
func (c *Connection) Submit(req Request) error {
	switch st := c.stage.(type) {
	case connecting:
		if st.ex != nil {
			return ErrNotAccepting
		}
	case waiting:
	default:
		return ErrNotAccepting
	}

	ex := newExchange(req, c.newResponse(req))
	if err := req.Finalize(); err != nil {
		return c.apply(fail("incomplete request", wrap(ErrIncompleteRequest, err)).with(ex))
	}

	c.touch()
	if c.State() == Connecting {
		// sending starts as soon as the socket becomes writable
		return c.apply(moveTo(Connecting, "new request").with(ex))
	}

	return c.apply(moveTo(Sending, "new request").with(ex))
}

// Close closes the socket and moves the connection Offline. A request in flight is
// completed with ErrClosed. Closing an Offline connection is no-op.
func (c *Connection) Close() {
	if c.State() == Offline {
		return
	}

	_ = c.apply(fail("closed", ErrClosed))
}

// apply performs the transition. Exchanges are retired before entering Waiting or
// Offline, and the socket is closed before entering Offline.
func (c *Connection) apply(t transition) error {
	if !t.set {
		return nil
	}

	from := c.State()
	c.emit(from, t.next, t.reason, t.err)

	lnk, ex := detach(c.stage)
	if t.adopt != nil {
		if ex != nil {
			panic("BUG: conn: adopting an exchange while another one is in flight")
		}

		ex = t.adopt
	}

	if t.next == Waiting || t.next == Offline {
		if ex != nil {
			ex.retire(t.err)
			ex = nil
		}
	}

	if t.next == Offline {
		if lnk != nil {
			_ = lnk.sock.Close()
		}

		c.stage = offline{}
		return t.err
	}

	if lnk == nil {
		panic(fmt.Sprintf("BUG: conn: transition from %s to %s without a socket", from, t.next))
	}

	switch t.next {
	case Connecting:
		c.stage = connecting{link: *lnk, ex: ex}
	case Sending:
		c.stage = sending{link: *lnk, ex: mustExchange(ex, t.next)}
	case Receiving:
		c.stage = receiving{link: *lnk, ex: mustExchange(ex, t.next)}
	case Waiting:
		c.stage = waiting{link: *lnk}
	default:
		panic(fmt.Sprintf("BUG: conn: unknown state %d", t.next))
	}

	return t.err
}

func mustExchange(ex *exchange, next State) *exchange {
	if ex == nil {
		panic(fmt.Sprintf("BUG: conn: entering %s without a request", next))
	}

	return ex
}

func (c *Connection) touch() {
	c.lastAction = c.clock.Now()
}

func (c *Connection) emit(from, to State, reason string, err error) {
	c.sink.Event(logging.Event{
		Conn:   c.id,
		From:   from.String(),
		To:     to.String(),
		Reason: reason,
		Err:    err,
	})
}
