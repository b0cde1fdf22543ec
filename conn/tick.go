package conn

import (
	"errors"

	"github.com/indigo-web/nbclient/transport"
	"github.com/indigo-web/utils/strcomp"
)

// Tick makes a bounded unit of progress and returns. It must be called repeatedly, as
// timeouts and readiness are only noticed during ticks. The returned error is the
// failure that brought the connection Offline, if this tick did.
func (c *Connection) Tick() error {
	if c.State() == Offline {
		return nil
	}

	if c.expired() {
		return c.apply(fail("timeout", ErrTimeout))
	}

	switch st := c.stage.(type) {
	case connecting:
		return c.apply(c.tickConnecting(st))
	case sending:
		return c.apply(c.tickSending(st))
	case receiving:
		return c.apply(c.tickReceiving(st))
	case waiting:
		return c.apply(c.tickWaiting(st))
	}

	return nil
}

func (c *Connection) expired() bool {
	window := c.activity
	if c.State() == Waiting {
		window = c.idle
	}

	return c.clock.Now()-c.lastAction > window
}

func (c *Connection) tickConnecting(st connecting) transition {
	poll, err := st.sock.PollWritable()
	switch poll {
	case transport.Ready:
		c.touch()
		if st.ex != nil {
			return moveTo(Sending, "connected")
		}

		return moveTo(Waiting, "connected")
	case transport.Failed:
		return fail("could not connect", wrap(ErrConnect, err))
	default:
		return stay
	}
}

func (c *Connection) tickSending(st sending) transition {
	data, err := st.ex.req.Data(c.chunkSize)
	if err != nil {
		return fail("could not read request data", wrap(ErrRequestData, err))
	}

	if len(data) == 0 {
		return moveTo(Receiving, "sent request")
	}

	n, err := st.sock.Send(data)
	if err != nil {
		if !errors.Is(err, transport.ErrWouldBlock) {
			return fail("sending data", wrap(ErrSend, err))
		}

		n = 0
	}

	if n > 0 {
		c.touch()
	}

	if n < len(data) {
		// the rest is offered again on the next tick
		st.ex.req.MoveCursor(n - len(data))
	}

	return stay
}

func (c *Connection) tickReceiving(st receiving) transition {
	var finished, peerClosed bool

	n, err := st.sock.Recv(c.buff)
	switch {
	case err != nil:
		if !errors.Is(err, transport.ErrWouldBlock) {
			return fail("receiving data", wrap(ErrRecv, err))
		}

		finished = st.ex.resp.Complete()
	case n > 0:
		c.touch()
		if err = st.ex.resp.Write(c.buff[:n]); err != nil {
			return fail("could not read the response", wrap(ErrMalformedResponse, err))
		}
	default:
		finished, peerClosed = true, true
	}

	if !finished {
		return stay
	}

	if err = st.ex.resp.Finalize(); err != nil {
		return fail("incomplete response", wrap(ErrIncompleteResponse, err))
	}

	if value, found := st.ex.resp.Field("Connection"); peerClosed || (found && strcomp.EqualFold(value, "close")) {
		return moveTo(Offline, "received response")
	}

	return moveTo(Waiting, "received response")
}

// tickWaiting watches an idle connection, as the peer may close it at any moment. Unlike
// tickReceiving, would-block is simply nothing to do: there is no response to complete.
func (c *Connection) tickWaiting(st waiting) transition {
	n, err := st.sock.Recv(c.buff)
	switch {
	case err == nil && n == 0:
		return moveTo(Offline, "remote closed")
	case err == nil:
		// nobody asked for these bytes
		return stay
	case errors.Is(err, transport.ErrWouldBlock):
		return stay
	default:
		return fail("waiting", wrap(ErrRecv, err))
	}
}
