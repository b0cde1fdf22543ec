package status

// Error describes a response the client refuses to accept.
type Error struct {
	Message string
}

func NewError(message string) error {
	return Error{Message: message}
}

func (e Error) Error() string {
	return e.Message
}

var (
	ErrBadResponse          = NewError("malformed response")
	ErrTooLongResponseLine  = NewError("response line is too long")
	ErrHeaderFieldsTooLarge = NewError("too large headers section")
	ErrTooManyHeaders       = NewError("too many headers")
	ErrUnsupportedProtocol  = NewError("protocol is not supported")
	ErrBadChunk             = NewError("malformed chunk-encoded data")
	ErrBadContentLength     = NewError("malformed content length")
	ErrExcessData           = NewError("unexpected data after the response")
	ErrBodyTooLarge         = NewError("response body is too large")
	ErrUnsupportedEncoding  = NewError("content coding is not supported")
	ErrIncompleteResponse   = NewError("response is incomplete")
)
