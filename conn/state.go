package conn

import (
	"net/netip"

	"github.com/indigo-web/nbclient/transport"
)

type State uint8

const (
	Offline State = iota
	Connecting
	Sending
	Receiving
	Waiting
)

func (s State) String() string {
	switch s {
	case Offline:
		return "offline"
	case Connecting:
		return "connecting"
	case Sending:
		return "sending"
	case Receiving:
		return "receiving"
	case Waiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// stage is the state together with everything that is valid in it. Every state has its
// own type, so a socket without a state that needs it, or a request while idling, cannot
// be represented at all.
type stage interface {
	state() State
}

// link is the socket and the peer it's connected (or connecting) to. Present in every
// state except Offline.
type link struct {
	sock transport.Socket
	addr netip.AddrPort
}

type (
	offline struct{}

	connecting struct {
		link
		// ex is set if a request was submitted before the connect completed.
		ex *exchange
	}

	sending struct {
		link
		ex *exchange
	}

	receiving struct {
		link
		ex *exchange
	}

	waiting struct {
		link
	}
)

func (offline) state() State    { return Offline }
func (connecting) state() State { return Connecting }
func (sending) state() State    { return Sending }
func (receiving) state() State  { return Receiving }
func (waiting) state() State    { return Waiting }

// detach returns the link and the exchange held by the stage, if any.
func detach(s stage) (*link, *exchange) {
	switch st := s.(type) {
	case connecting:
		return &st.link, st.ex
	case sending:
		return &st.link, st.ex
	case receiving:
		return &st.link, st.ex
	case waiting:
		return &st.link, nil
	default:
		return nil, nil
	}
}
