package conn

import (
	"errors"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/indigo-web/nbclient/config"
	"github.com/indigo-web/nbclient/internal/timer"
	"github.com/indigo-web/nbclient/logging"
	"github.com/indigo-web/nbclient/transport/dummy"
	"github.com/stretchr/testify/require"
)

var (
	peer         = netip.MustParseAddrPort("192.0.2.1:80")
	errShortBody = errors.New("body is too short")
)

// fakeRequest serves a fixed payload and records its completion.
type fakeRequest struct {
	payload     []byte
	cursor      int
	finalizeErr error
	dataErr     error
	calls       int
	resp        Response
	err         error
	released    bool
	offered     []string
}

func newRequest(payload string) *fakeRequest {
	return &fakeRequest{payload: []byte(payload)}
}

func (r *fakeRequest) Finalize() error {
	return r.finalizeErr
}

func (r *fakeRequest) Data(max int) ([]byte, error) {
	if r.dataErr != nil {
		return nil, r.dataErr
	}

	end := min(r.cursor+max, len(r.payload))
	data := r.payload[r.cursor:end]
	r.cursor = end
	if len(data) > 0 {
		r.offered = append(r.offered, string(data))
	}

	return data, nil
}

func (r *fakeRequest) MoveCursor(delta int) {
	r.cursor += delta
}

func (r *fakeRequest) Complete(resp Response, err error) {
	r.calls++
	r.resp, r.err = resp, err
}

func (r *fakeRequest) Release() {
	r.released = true
}

// fakeResponse is complete once it has received the expected amount of bytes.
type fakeResponse struct {
	expect      int
	received    strings.Builder
	headers     map[string]string
	writeErr    error
	finalizeErr error
	finalized   bool
	// req is the request the response was created for
	req Request
}

func (r *fakeResponse) Write(b []byte) error {
	if r.writeErr != nil {
		return r.writeErr
	}

	r.received.Write(b)
	return nil
}

func (r *fakeResponse) Complete() bool {
	return r.expect > 0 && r.received.Len() >= r.expect
}

func (r *fakeResponse) Finalize() error {
	if r.finalizeErr != nil {
		return r.finalizeErr
	}

	if r.expect > 0 && r.received.Len() < r.expect {
		return errShortBody
	}

	r.finalized = true
	return nil
}

func (r *fakeResponse) Field(name string) (string, bool) {
	for key, value := range r.headers {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}

	return "", false
}

type harness struct {
	conn      *Connection
	sock      *dummy.Socket
	factory   *dummy.Factory
	clock     *timer.Manual
	events    []logging.Event
	responses []*fakeResponse
	// template is copied into every new response
	template fakeResponse
}

func newHarness(t *testing.T, sock *dummy.Socket) *harness {
	h := &harness{
		sock:    sock,
		factory: dummy.NewFactory(sock),
		clock:   timer.NewManual(),
	}

	cfg := config.Default()
	cfg.NET.ChunkSize = 16

	h.conn = New(h.factory, h.newResponse,
		WithConfig(cfg),
		WithClock(h.clock),
		WithID("test"),
		WithSink(logging.Func(func(e logging.Event) {
			h.events = append(h.events, e)
		})),
	)

	t.Cleanup(func() {
		// whatever happened, the pair must never be half-present
		requireConsistent(t, h.conn)
	})

	return h
}

func (h *harness) newResponse(req Request) Response {
	resp := &fakeResponse{
		req:         req,
		expect:      h.template.expect,
		headers:     h.template.headers,
		writeErr:    h.template.writeErr,
		finalizeErr: h.template.finalizeErr,
	}
	h.responses = append(h.responses, resp)

	return resp
}

// connect brings the connection into Waiting.
func (h *harness) connect(t *testing.T) {
	h.sock.Writable()
	require.NoError(t, h.conn.Connect(peer))
	require.NoError(t, h.conn.Tick())
	require.Equal(t, Waiting, h.conn.State())
}

func (h *harness) ticks(t *testing.T, n int) {
	for range n {
		require.NoError(t, h.conn.Tick())
	}
}

func (h *harness) lastReason() string {
	if len(h.events) == 0 {
		return ""
	}

	return h.events[len(h.events)-1].Reason
}

func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
}

func requireConsistent(t *testing.T, c *Connection) {
	switch st := c.stage.(type) {
	case offline:
		_, ok := c.Addr()
		require.False(t, ok)
	case connecting:
		require.NotNil(t, st.sock)
		if st.ex != nil {
			require.Equal(t, st.ex.req == nil, st.ex.resp == nil)
		}
	case sending:
		require.NotNil(t, st.sock)
		require.NotNil(t, st.ex)
		require.NotNil(t, st.ex.req)
		require.NotNil(t, st.ex.resp)
	case receiving:
		require.NotNil(t, st.sock)
		require.NotNil(t, st.ex)
		require.NotNil(t, st.ex.req)
		require.NotNil(t, st.ex.resp)
	case waiting:
		require.NotNil(t, st.sock)
	}
}
