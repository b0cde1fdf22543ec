package transport

import (
	"errors"
	"net/netip"
)

// ErrWouldBlock is returned by Send and Recv when the operation cannot progress without
// blocking. It is not a failure: the caller just tries again later.
var ErrWouldBlock = errors.New("operation would block")

// Poll is the outcome of a writability check.
type Poll uint8

const (
	// Pending means the connect is still in progress.
	Pending Poll = iota
	// Ready means the socket is connected and writable.
	Ready
	// Failed means the connect attempt failed.
	Failed
)

func (p Poll) String() string {
	switch p {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Socket is a non-blocking stream socket. None of the methods may block.
type Socket interface {
	// Connect initiates an asynchronous connect. An in-progress connect is not an error,
	// its result is observed via PollWritable.
	Connect(addr netip.AddrPort) error
	// PollWritable checks the socket without waiting. The error is set only for Failed.
	PollWritable() (Poll, error)
	// Send writes as much of b as the socket accepts. Zero accepted bytes are reported as
	// ErrWouldBlock.
	Send(b []byte) (int, error)
	// Recv reads into b. (0, nil) means the peer closed the connection, ErrWouldBlock
	// means there is nothing to read yet.
	Recv(b []byte) (int, error)
	Close() error
}

// Factory creates sockets suitable for connecting to the address. Sockets are bound to
// the wildcard address of the same family.
type Factory interface {
	NewSocket(addr netip.AddrPort) (Socket, error)
}
