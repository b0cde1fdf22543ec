package dummy

import (
	"errors"
	"net/netip"

	"github.com/indigo-web/nbclient/transport"
)

var _ transport.Socket = new(Socket)

var ErrClosed = errors.New("dummy socket: use of closed socket")

type recvStep struct {
	data   []byte
	err    error
	closed bool
}

// Socket is a scripted transport.Socket. Every non-blocking operation consumes the next
// step of its script, and falls back to "nothing happened" once the script runs out:
// PollWritable reports Pending, Recv reports ErrWouldBlock and Send accepts everything.
// All the sent data is journaled.
type Socket struct {
	Addr       netip.AddrPort
	connectErr error
	polls      []pollStep
	sends      []sendStep
	recvs      []recvStep
	written    []byte
	connects   int
	closed     bool
}

type pollStep struct {
	poll transport.Poll
	err  error
}

type sendStep struct {
	limit int
	err   error
}

func NewSocket() *Socket {
	return new(Socket)
}

// FailConnect makes Connect return the error.
func (s *Socket) FailConnect(err error) *Socket {
	s.connectErr = err
	return s
}

// Pending queues n polls reporting the connect is still in progress.
func (s *Socket) Pending(n int) *Socket {
	for range n {
		s.polls = append(s.polls, pollStep{poll: transport.Pending})
	}

	return s
}

// Writable queues a poll reporting the socket got connected.
func (s *Socket) Writable() *Socket {
	s.polls = append(s.polls, pollStep{poll: transport.Ready})
	return s
}

// Refuse queues a poll reporting a failed connect.
func (s *Socket) Refuse(err error) *Socket {
	s.polls = append(s.polls, pollStep{poll: transport.Failed, err: err})
	return s
}

// AcceptAtMost queues sends, each accepting at most the corresponding amount of bytes.
// Zero makes the send would-block.
func (s *Socket) AcceptAtMost(limits ...int) *Socket {
	for _, limit := range limits {
		s.sends = append(s.sends, sendStep{limit: limit})
	}

	return s
}

// FailSend queues a send failing with the error.
func (s *Socket) FailSend(err error) *Socket {
	s.sends = append(s.sends, sendStep{err: err})
	return s
}

// Feed queues data to be received. Every piece is delivered by a separate Recv, split
// further if it doesn't fit into the buffer.
func (s *Socket) Feed(pieces ...string) *Socket {
	for _, piece := range pieces {
		s.recvs = append(s.recvs, recvStep{data: []byte(piece)})
	}

	return s
}

// Stall queues n receives reporting ErrWouldBlock before the next scripted step.
func (s *Socket) Stall(n int) *Socket {
	for range n {
		s.recvs = append(s.recvs, recvStep{err: transport.ErrWouldBlock})
	}

	return s
}

// PeerClose queues a receive reporting the peer closed the connection.
func (s *Socket) PeerClose() *Socket {
	s.recvs = append(s.recvs, recvStep{closed: true})
	return s
}

// FailRecv queues a receive failing with the error.
func (s *Socket) FailRecv(err error) *Socket {
	s.recvs = append(s.recvs, recvStep{err: err})
	return s
}

func (s *Socket) Connect(addr netip.AddrPort) error {
	if s.closed {
		return ErrClosed
	}

	s.connects++
	s.Addr = addr
	return s.connectErr
}

func (s *Socket) PollWritable() (transport.Poll, error) {
	if s.closed {
		return transport.Failed, ErrClosed
	}

	if len(s.polls) == 0 {
		return transport.Pending, nil
	}

	step := s.polls[0]
	s.polls = s.polls[1:]

	return step.poll, step.err
}

func (s *Socket) Send(b []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}

	n := len(b)
	if len(s.sends) > 0 {
		step := s.sends[0]
		s.sends = s.sends[1:]
		if step.err != nil {
			return 0, step.err
		}

		n = min(n, step.limit)
	}

	if n == 0 && len(b) > 0 {
		return 0, transport.ErrWouldBlock
	}

	s.written = append(s.written, b[:n]...)
	return n, nil
}

func (s *Socket) Recv(b []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}

	if len(s.recvs) == 0 {
		return 0, transport.ErrWouldBlock
	}

	step := &s.recvs[0]
	switch {
	case step.closed:
		s.recvs = s.recvs[1:]
		return 0, nil
	case step.err != nil:
		s.recvs = s.recvs[1:]
		return 0, step.err
	}

	n := copy(b, step.data)
	step.data = step.data[n:]
	if len(step.data) == 0 {
		s.recvs = s.recvs[1:]
	}

	return n, nil
}

func (s *Socket) Close() error {
	s.closed = true
	return nil
}

// Written returns everything that was sent so far.
func (s *Socket) Written() string {
	return string(s.written)
}

func (s *Socket) Closed() bool {
	return s.closed
}

func (s *Socket) Connects() int {
	return s.connects
}

// Factory hands out the sockets it was initialized with in order. Once they run out,
// fresh sockets are created, which never get connected.
type Factory struct {
	sockets []*Socket
	err     error
	Created []*Socket
}

func NewFactory(sockets ...*Socket) *Factory {
	return &Factory{sockets: sockets}
}

// Fail makes all the following NewSocket calls fail with the error.
func (f *Factory) Fail(err error) *Factory {
	f.err = err
	return f
}

func (f *Factory) NewSocket(netip.AddrPort) (transport.Socket, error) {
	if f.err != nil {
		return nil, f.err
	}

	sock := NewSocket()
	if len(f.sockets) > 0 {
		sock, f.sockets = f.sockets[0], f.sockets[1:]
	}

	f.Created = append(f.Created, sock)
	return sock, nil
}
