package client

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	render "github.com/indigo-web/nbclient/client/internal/render/http1"
	"github.com/indigo-web/nbclient/config"
	"github.com/indigo-web/nbclient/conn"
	"github.com/indigo-web/nbclient/http/codec"
	"github.com/indigo-web/nbclient/http/method"
	"github.com/indigo-web/nbclient/http/proto"
	"github.com/indigo-web/nbclient/kv"
	json "github.com/json-iterator/go"
	"github.com/valyala/bytebufferpool"
)

var (
	_ conn.Request  = new(Request)
	_ conn.Releaser = new(Request)
)

// OnComplete is called exactly once per submission, either with the response or with
// the error that prevented it.
type OnComplete func(resp *Response, err error)

// Request is built by chaining its methods, and then handed over to a connection.
// Once submitted, it must not be modified until completed.
type Request struct {
	id         uuid.UUID
	method     method.Method
	path       string
	proto      proto.Proto
	query      *kv.Storage
	headers    *kv.Storage
	body       []byte
	reader     io.Reader
	err        error
	cfg        *config.Config
	onComplete OnComplete

	buff      *bytebufferpool.ByteBuffer
	cursor    int
	completed bool
}

func NewRequest(m method.Method, path string) *Request {
	return &Request{
		id:      uuid.New(),
		method:  m,
		path:    path,
		proto:   proto.HTTP11,
		query:   kv.New(),
		headers: kv.New(),
		cfg:     config.Default(),
	}
}

func (r *Request) ID() uuid.UUID {
	return r.id
}

func (r *Request) Method() method.Method {
	return r.method
}

func (r *Request) Path() string {
	return r.path
}

func (r *Request) Headers() *kv.Storage {
	return r.headers
}

// WithConfig sets the config the default headers and the content decoding are taken from.
func (r *Request) WithConfig(cfg *config.Config) *Request {
	r.cfg = cfg
	return r
}

func (r *Request) Protocol(p proto.Proto) *Request {
	r.proto = p
	return r
}

func (r *Request) Host(host string) *Request {
	r.headers.Set("Host", host)
	return r
}

// Header adds a header field. Repeated keys are sent as many times as added.
func (r *Request) Header(key, value string) *Request {
	r.headers.Add(key, value)
	return r
}

// Query adds query parameters. They are escaped when rendered.
func (r *Request) Query(key string, values ...string) *Request {
	for _, value := range values {
		r.query.Add(key, value)
	}

	return r
}

func (r *Request) Body(b []byte) *Request {
	r.body = b
	r.reader = nil
	return r
}

func (r *Request) String(s string) *Request {
	return r.Body([]byte(s))
}

// JSON marshals the value as the body. A marshalling error is reported by Finalize.
func (r *Request) JSON(v any) *Request {
	data, err := json.ConfigCompatibleWithStandardLibrary.Marshal(v)
	if err != nil {
		r.err = fmt.Errorf("marshal body: %w", err)
		return r
	}

	if !r.headers.Has("Content-Type") {
		r.headers.Add("Content-Type", "application/json")
	}

	return r.Body(data)
}

// Reader makes the body be read from the reader. It is read until EOF by Finalize.
func (r *Request) Reader(reader io.Reader) *Request {
	r.reader = reader
	r.body = nil
	return r
}

func (r *Request) OnComplete(cb OnComplete) *Request {
	r.onComplete = cb
	return r
}

// Finalize validates the request and renders it. Calling it again is no-op until the
// request is released.
func (r *Request) Finalize() error {
	if r.buff != nil {
		return nil
	}

	switch {
	case r.err != nil:
		return r.err
	case r.method == method.Unknown || r.method > method.Count:
		return ErrUnknownMethod
	case r.path != "*" && (len(r.path) == 0 || r.path[0] != '/'):
		return ErrBadPath
	case strings.ContainsAny(r.path, " \t\r\n\x00"):
		return ErrBadPath
	case !r.proto.IsHTTP1():
		return ErrBadProtocol
	case r.proto == proto.HTTP11 && !r.headers.Has("Host"):
		return ErrNoHost
	}

	for _, key := range slices.Sorted(maps.Keys(r.cfg.Headers.Default)) {
		if !r.headers.Has(key) {
			r.headers.Add(key, r.cfg.Headers.Default[key])
		}
	}

	if r.cfg.Body.Decode && !r.headers.Has("Accept-Encoding") {
		r.headers.Add("Accept-Encoding", codec.AcceptEncoding(codec.Default()))
	}

	for key, value := range r.headers.Pairs() {
		if !validHeader(key, value) {
			return fmt.Errorf("%w: %q", ErrBadHeader, key)
		}
	}

	if r.reader != nil {
		body, err := io.ReadAll(r.reader)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		r.body, r.reader = body, nil
	}

	r.buff = bytebufferpool.Get()
	render.Render(r.buff, render.Request{
		Method:  r.method,
		Path:    r.path,
		Query:   r.query,
		Proto:   r.proto,
		Headers: r.headers,
		Body:    r.body,
	})

	return nil
}

// validHeader rejects fields that would end up as something else than a single header
// line once rendered.
func validHeader(key, value string) bool {
	return len(key) > 0 &&
		!strings.ContainsAny(key, ": \t\r\n\x00") &&
		!strings.ContainsAny(value, "\r\n\x00")
}

// Data returns at most max bytes of the rendered request, starting at the cursor, and
// moves the cursor past them. Empty data means everything was consumed.
func (r *Request) Data(max int) ([]byte, error) {
	if r.buff == nil {
		return nil, ErrNotFinalized
	}

	end := min(r.cursor+max, len(r.buff.B))
	data := r.buff.B[r.cursor:end]
	r.cursor = end

	return data, nil
}

// MoveCursor moves the cursor by delta bytes, which may be negative. The cursor never
// leaves the rendered data.
func (r *Request) MoveCursor(delta int) {
	if r.buff == nil {
		return
	}

	r.cursor = max(0, min(r.cursor+delta, len(r.buff.B)))
}

// Complete invokes the callback. Only the first call per submission has an effect. The
// response must be a *Response, anything else is reported as ErrForeignResponse.
func (r *Request) Complete(resp conn.Response, err error) {
	if r.completed {
		return
	}

	r.completed = true
	if r.onComplete == nil {
		return
	}

	if err != nil {
		r.onComplete(nil, err)
		return
	}

	response, ok := resp.(*Response)
	if !ok {
		r.onComplete(nil, fmt.Errorf("%w: got %T", ErrForeignResponse, resp))
		return
	}

	r.onComplete(response, nil)
}

// Release returns the rendered data into the pool. The request may be submitted again
// afterward.
func (r *Request) Release() {
	if r.buff != nil {
		bytebufferpool.Put(r.buff)
		r.buff = nil
	}

	r.cursor = 0
	r.completed = false
}
