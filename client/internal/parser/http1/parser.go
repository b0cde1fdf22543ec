package http1

import (
	"bytes"

	"github.com/indigo-web/nbclient/config"
	"github.com/indigo-web/nbclient/http/proto"
	"github.com/indigo-web/nbclient/http/status"
	"github.com/indigo-web/nbclient/internal/buffer"
	"github.com/indigo-web/nbclient/kv"
	"github.com/indigo-web/utils/uf"
)

// Head is the status line and the header fields of a response.
type Head struct {
	Protocol proto.Proto
	Code     status.Code
	Status   status.Status
	Headers  *kv.Storage
}

// Parser is a streaming response head parser. The data may be split at arbitrary
// positions; the parser keeps whatever it needs between calls.
type Parser struct {
	state      parserState
	digits     int
	headersNum int
	maxHeaders int
	line       *buffer.Buffer
	fields     *buffer.Buffer
	key        string
	head       Head
}

func NewParser(cfg *config.Config) *Parser {
	return &Parser{
		state:      eProto,
		maxHeaders: cfg.Headers.MaxNumber,
		line: buffer.New(
			cfg.Headers.ResponseLineSize.Default, cfg.Headers.ResponseLineSize.Maximal,
		),
		fields: buffer.New(cfg.Headers.Space.Default, cfg.Headers.Space.Maximal),
	}
}

// Init prepares the parser for a new head. Header fields are added to the storage.
// Strings of the previous head must not be used after the call.
func (p *Parser) Init(headers *kv.Storage) {
	p.state = eProto
	p.digits = 0
	p.headersNum = 0
	p.line.Clear()
	p.fields.Clear()
	p.head = Head{Headers: headers}
}

// Head returns the parsed head. It is meaningful only after Parse reported completion.
func (p *Parser) Head() Head {
	return p.head
}

// Parse consumes the data. Once the head is complete, done is true and extra holds the
// bytes following it. Errors are not recoverable.
func (p *Parser) Parse(data []byte) (done bool, extra []byte, err error) {
	switch p.state {
	case eProto:
		goto protocol
	case eCode:
		goto code
	case eReason:
		goto reason
	case eHeaderKey:
		goto headerKey
	case eHeaderKeyCR:
		goto headerKeyCR
	case eHeaderColon:
		goto headerColon
	case eHeaderValue:
		goto headerValue
	case eDone:
		return true, data, nil
	default:
		panic("BUG: response parser: unknown state")
	}

protocol:
	{
		sp := bytes.IndexByte(data, ' ')
		if sp == -1 {
			if !p.line.Append(data) {
				return false, nil, status.ErrTooLongResponseLine
			}

			return false, nil, nil
		}

		if !p.line.Append(data[:sp]) {
			return false, nil, status.ErrTooLongResponseLine
		}

		p.head.Protocol = proto.FromBytes(p.line.Finish())
		if !p.head.Protocol.IsHTTP1() {
			return false, nil, status.ErrUnsupportedProtocol
		}

		data = data[sp+1:]
		p.state = eCode
		goto code
	}

code:
	for i := 0; i < len(data); i++ {
		switch char := data[i]; {
		case char >= '0' && char <= '9':
			p.digits++
			if p.digits > 3 {
				return false, nil, status.ErrBadResponse
			}

			p.head.Code = p.head.Code*10 + status.Code(char-'0')
		case char == ' ', char == '\r', char == '\n':
			if p.digits != 3 || !p.head.Code.Valid() {
				return false, nil, status.ErrBadResponse
			}

			if char == ' ' {
				i++
			}

			// the reason phrase may be absent altogether
			data = data[i:]
			p.state = eReason
			goto reason
		default:
			return false, nil, status.ErrBadResponse
		}
	}

	return false, nil, nil

reason:
	{
		lf := bytes.IndexByte(data, '\n')
		if lf == -1 {
			if !p.line.Append(data) {
				return false, nil, status.ErrTooLongResponseLine
			}

			return false, nil, nil
		}

		if !p.line.Append(data[:lf]) {
			return false, nil, status.ErrTooLongResponseLine
		}

		p.head.Status = status.Status(uf.B2S(rstripCR(p.line.Finish())))
		data = data[lf+1:]
		p.state = eHeaderKey
		goto headerKey
	}

headerKey:
	if len(data) == 0 {
		return false, nil, nil
	}

	if p.fields.SegmentLength() == 0 {
		switch data[0] {
		case '\r':
			data = data[1:]
			p.state = eHeaderKeyCR
			goto headerKeyCR
		case '\n':
			data = data[1:]
			goto complete
		}
	}

	{
		colon := bytes.IndexByte(data, ':')
		if colon == -1 {
			if bytes.IndexByte(data, '\n') != -1 {
				return false, nil, status.ErrBadResponse
			}

			if !p.fields.Append(data) {
				return false, nil, status.ErrHeaderFieldsTooLarge
			}

			return false, nil, nil
		}

		if bytes.IndexByte(data[:colon], '\n') != -1 {
			return false, nil, status.ErrBadResponse
		}

		if !p.fields.Append(data[:colon]) {
			return false, nil, status.ErrHeaderFieldsTooLarge
		}

		key := p.fields.Finish()
		if len(key) == 0 {
			return false, nil, status.ErrBadResponse
		}

		p.key = uf.B2S(key)
		data = data[colon+1:]
		p.state = eHeaderColon
		goto headerColon
	}

headerKeyCR:
	if len(data) == 0 {
		return false, nil, nil
	}

	if data[0] != '\n' {
		return false, nil, status.ErrBadResponse
	}

	data = data[1:]
	goto complete

headerColon:
	for i := 0; i < len(data); i++ {
		if data[i] != ' ' && data[i] != '\t' {
			data = data[i:]
			p.state = eHeaderValue
			goto headerValue
		}
	}

	return false, nil, nil

headerValue:
	{
		lf := bytes.IndexByte(data, '\n')
		if lf == -1 {
			if !p.fields.Append(data) {
				return false, nil, status.ErrHeaderFieldsTooLarge
			}

			return false, nil, nil
		}

		if !p.fields.Append(data[:lf]) {
			return false, nil, status.ErrHeaderFieldsTooLarge
		}

		p.headersNum++
		if p.headersNum > p.maxHeaders {
			return false, nil, status.ErrTooManyHeaders
		}

		p.head.Headers.Add(p.key, uf.B2S(rstripSpace(p.fields.Finish())))
		data = data[lf+1:]
		p.state = eHeaderKey
		goto headerKey
	}

complete:
	p.state = eDone

	return true, data, nil
}

func rstripCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		b = b[:len(b)-1]
	}

	return b
}

func rstripSpace(b []byte) []byte {
	for len(b) > 0 {
		switch b[len(b)-1] {
		case '\r', ' ', '\t':
			b = b[:len(b)-1]
		default:
			return b
		}
	}

	return b
}
