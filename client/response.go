package client

import (
	"strconv"
	"strings"

	"github.com/indigo-web/nbclient/client/internal/body"
	"github.com/indigo-web/nbclient/client/internal/parser/http1"
	"github.com/indigo-web/nbclient/config"
	"github.com/indigo-web/nbclient/conn"
	"github.com/indigo-web/nbclient/http/codec"
	"github.com/indigo-web/nbclient/http/method"
	"github.com/indigo-web/nbclient/http/proto"
	"github.com/indigo-web/nbclient/http/status"
	"github.com/indigo-web/nbclient/kv"
	"github.com/indigo-web/utils/strcomp"
	json "github.com/json-iterator/go"
)

var _ conn.Response = new(Response)

// Response is filled by the connection as the data arrives. It is safe to read it only
// after it was passed into the completion callback.
type Response struct {
	Protocol proto.Proto
	Code     status.Code
	Status   status.Status
	Headers  *kv.Storage

	parser    *http1.Parser
	body      *body.Body
	codecs    []codec.Codec
	decode    bool
	headDone  bool
	finalized bool
	// bodiless is set for responses to HEAD, which carry the headers of a GET response
	// but never its body.
	bodiless bool
}

func NewResponse(cfg *config.Config) *Response {
	headers := kv.NewPrealloc(cfg.Headers.MaxNumber / 4)
	parser := http1.NewParser(cfg)
	parser.Init(headers)

	return &Response{
		Headers: headers,
		parser:  parser,
		body:    body.New(cfg.Body),
		codecs:  codec.Default(),
		decode:  cfg.Body.Decode,
	}
}

// NewResponseFactory returns a constructor of responses suitable for conn.New.
func NewResponseFactory(cfg *config.Config) conn.ResponseFactory {
	return func(req conn.Request) conn.Response {
		resp := NewResponse(cfg)
		if r, ok := req.(*Request); ok {
			resp.bodiless = r.method == method.HEAD
		}

		return resp
	}
}

// Write feeds the response with the data. Interim (1xx) responses are skipped, as the
// final one follows them.
func (r *Response) Write(data []byte) error {
	for !r.headDone {
		done, extra, err := r.parser.Parse(data)
		if err != nil {
			return err
		}

		if !done {
			return nil
		}

		data = extra
		head := r.parser.Head()
		if head.Code.IsInterim() {
			r.Headers.Clear()
			r.parser.Init(r.Headers)
			continue
		}

		r.Protocol, r.Code, r.Status = head.Protocol, head.Code, head.Status
		if err = r.frame(); err != nil {
			return err
		}

		r.headDone = true
	}

	return r.body.Write(data)
}

// frame chooses how the end of the body is recognized, following RFC 9112, 6.3. Framing
// headers of responses to HEAD describe the body a GET would get, so they are ignored.
func (r *Response) frame() error {
	if r.bodiless || !r.Code.HasBody() {
		return r.body.Reset(body.None, 0, false)
	}

	if encoding, found := r.Headers.Get("Transfer-Encoding"); found {
		if !isChunked(encoding) {
			return r.body.Reset(body.UntilClose, 0, false)
		}

		return r.body.Reset(body.Chunked, 0, r.Headers.Has("Trailer"))
	}

	if value, found := r.Headers.Get("Content-Length"); found {
		length, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return ErrBadContentLength
		}

		return r.body.Reset(body.Length, length, false)
	}

	return r.body.Reset(body.UntilClose, 0, false)
}

// isChunked reports whether chunked is the last transfer coding applied.
func isChunked(encoding string) bool {
	if comma := strings.LastIndexByte(encoding, ','); comma != -1 {
		encoding = encoding[comma+1:]
	}

	return strcomp.EqualFold(strings.TrimSpace(encoding), "chunked")
}

// Complete reports whether the head and the whole body were received. Bodies lasting
// until the connection is closed never complete on their own.
func (r *Response) Complete() bool {
	return r.headDone && r.body.Done()
}

// Finalize checks that nothing is missing and decodes the body if needed. Bodies
// lasting until close are considered whole.
func (r *Response) Finalize() error {
	if r.finalized {
		return nil
	}

	if !r.headDone || !r.body.Satisfied() {
		return ErrIncompleteResponse
	}

	if r.decode {
		coding, found := r.Headers.Get("Content-Encoding")
		if coding = strings.TrimSpace(coding); found && !strcomp.EqualFold(coding, "identity") {
			c := codec.Find(r.codecs, coding)
			if c == nil {
				return ErrUnsupportedEncoding
			}

			if err := r.body.Decode(c); err != nil {
				return err
			}
		}
	}

	r.finalized = true
	return nil
}

// Field returns the first value of the header field. Keys are case-insensitive.
func (r *Response) Field(name string) (string, bool) {
	return r.Headers.Get(name)
}

// Body returns the response body, decoded if the content decoding is enabled.
func (r *Response) Body() []byte {
	return r.body.Bytes()
}

func (r *Response) String() string {
	return string(r.body.Bytes())
}

// JSON unmarshalls the body into the value.
func (r *Response) JSON(v any) error {
	return json.ConfigCompatibleWithStandardLibrary.Unmarshal(r.body.Bytes(), v)
}
