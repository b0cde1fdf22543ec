package conn

// Request is an outbound HTTP message. A connection takes the ownership of it on Submit
// and hands it back only through Complete.
type Request interface {
	// Finalize prepares the serialized form of the request. An error means the request
	// is malformed or incomplete and cannot be sent.
	Finalize() error
	// Data returns at most max next bytes of the serialized request and advances the
	// cursor past them. An empty slice means everything was already returned.
	Data(max int) ([]byte, error)
	// MoveCursor moves the cursor by delta bytes. Negative values rewind it, so the
	// bytes the socket didn't accept are returned by the next Data call again.
	MoveCursor(delta int)
	// Complete is called exactly once, when the exchange is over. Either resp or err is
	// set, never both.
	Complete(resp Response, err error)
}

// Response accumulates an inbound HTTP message.
type Response interface {
	// Write feeds the received bytes. An error means the response is malformed, and the
	// exchange is aborted.
	Write(b []byte) error
	// Complete reports whether the whole response was already received. Some framings
	// (e.g. close-delimited bodies) are never complete until the peer closes.
	Complete() bool
	// Finalize is called once no more bytes are going to be written. An error means the
	// response is incomplete.
	Finalize() error
	// Field returns the first value of the header field, compared case-insensitively.
	Field(name string) (value string, found bool)
}

// Releaser is implemented by requests and responses holding pooled resources. Release is
// called once the exchange is retired, right after Request.Complete returns.
type Releaser interface {
	Release()
}

// ResponseFactory creates a fresh response for every accepted request. The request is
// passed as some responses depend on it, e.g. responses to HEAD never carry a body.
type ResponseFactory func(req Request) Response
