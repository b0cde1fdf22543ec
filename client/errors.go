package client

import (
	"errors"

	"github.com/indigo-web/nbclient/http/status"
)

var (
	ErrUnknownMethod     = errors.New("unknown request method")
	ErrBadPath           = errors.New("request path must be absolute or an asterisk, without whitespaces")
	ErrNoHost            = errors.New("HTTP/1.1 requests must have the Host header")
	ErrNotFinalized      = errors.New("request is not finalized")
	ErrUnsupportedScheme = errors.New("only http scheme is supported")
	ErrBadHeader         = errors.New("header field would break the request framing")
	ErrBadProtocol       = errors.New("requests can only be sent over HTTP/1.0 or HTTP/1.1")
	ErrForeignResponse   = errors.New("response was not produced by this package")
)

// Response errors. All of them are fatal for the connection the response came from.
var (
	ErrBadResponse          = status.ErrBadResponse
	ErrTooLongResponseLine  = status.ErrTooLongResponseLine
	ErrHeaderFieldsTooLarge = status.ErrHeaderFieldsTooLarge
	ErrTooManyHeaders       = status.ErrTooManyHeaders
	ErrUnsupportedProtocol  = status.ErrUnsupportedProtocol
	ErrBadChunk             = status.ErrBadChunk
	ErrBadContentLength     = status.ErrBadContentLength
	ErrExcessData           = status.ErrExcessData
	ErrBodyTooLarge         = status.ErrBodyTooLarge
	ErrUnsupportedEncoding  = status.ErrUnsupportedEncoding
	ErrIncompleteResponse   = status.ErrIncompleteResponse
)
