package http1

import (
	"net/url"
	"strconv"

	"github.com/indigo-web/nbclient/http/method"
	"github.com/indigo-web/nbclient/http/proto"
	"github.com/indigo-web/nbclient/kv"
	"github.com/indigo-web/utils/strcomp"
	"github.com/valyala/bytebufferpool"
)

var crlf = []byte("\r\n")

// Request is everything the request line and the header fields are rendered from.
type Request struct {
	Method  method.Method
	Path    string
	Query   *kv.Storage
	Proto   proto.Proto
	Headers *kv.Storage
	Body    []byte
}

// Render writes the request into the buffer. Content-Length is set by the renderer
// itself, any user-provided one is ignored.
func Render(buff *bytebufferpool.ByteBuffer, req Request) {
	renderRequestLine(buff, req)

	for key, value := range req.Headers.Pairs() {
		if strcomp.EqualFold(key, "Content-Length") {
			continue
		}

		renderHeader(buff, key, value)
	}

	if len(req.Body) > 0 || expectsBody(req.Method) {
		_, _ = buff.WriteString("Content-Length: ")
		buff.B = strconv.AppendInt(buff.B, int64(len(req.Body)), 10)
		_, _ = buff.Write(crlf)
	}

	_, _ = buff.Write(crlf)
	_, _ = buff.Write(req.Body)
}

func renderRequestLine(buff *bytebufferpool.ByteBuffer, req Request) {
	_, _ = buff.WriteString(req.Method.String())
	_ = buff.WriteByte(' ')
	_, _ = buff.WriteString(req.Path)

	if req.Query != nil && !req.Query.Empty() {
		separator := byte('?')
		for key, value := range req.Query.Pairs() {
			_ = buff.WriteByte(separator)
			_, _ = buff.WriteString(url.QueryEscape(key))
			_ = buff.WriteByte('=')
			_, _ = buff.WriteString(url.QueryEscape(value))
			separator = '&'
		}
	}

	_ = buff.WriteByte(' ')
	_, _ = buff.WriteString(req.Proto.String())
	_, _ = buff.Write(crlf)
}

// renderHeader writes the header field, appending CRLF in the end.
func renderHeader(buff *bytebufferpool.ByteBuffer, key, value string) {
	_, _ = buff.WriteString(key)
	_, _ = buff.WriteString(": ")
	_, _ = buff.WriteString(value)
	_, _ = buff.Write(crlf)
}

// expectsBody reports whether servers are likely to require Content-Length even for
// an empty body.
func expectsBody(m method.Method) bool {
	switch m {
	case method.POST, method.PUT, method.PATCH:
		return true
	default:
		return false
	}
}
