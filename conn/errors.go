package conn

import (
	"errors"
	"fmt"
)

// Rejected preconditions. They are returned to the caller and don't affect the
// connection.
var (
	ErrNotOffline   = errors.New("connection is already established or being established")
	ErrNotAccepting = errors.New("connection cannot accept a request in its current state")
)

// Failures. Each of them closes the connection, and the request in flight (if any) is
// completed with it.
var (
	ErrSocket             = errors.New("could not create socket")
	ErrConnect            = errors.New("could not connect")
	ErrIncompleteRequest  = errors.New("incomplete request")
	ErrRequestData        = errors.New("could not read request data")
	ErrSend               = errors.New("could not send data")
	ErrRecv               = errors.New("could not receive data")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrIncompleteResponse = errors.New("incomplete response")
	ErrTimeout            = errors.New("timeout")
	ErrClosed             = errors.New("connection closed")
)

// wrap keeps both the failure kind and its cause inspectable via errors.Is.
func wrap(kind, cause error) error {
	if cause == nil {
		return kind
	}

	return fmt.Errorf("%w: %w", kind, cause)
}
