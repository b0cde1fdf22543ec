package logging

import (
	"github.com/rs/zerolog"
)

// Event describes a single state transition of a connection.
type Event struct {
	// Conn identifies the connection.
	Conn string
	// From and To are the state names before and after the transition. They are equal
	// when the connection stays in the same state, e.g. on a queued request.
	From, To string
	// Reason is a short human-readable description, e.g. "connected" or "timeout".
	Reason string
	// Err is set for error transitions only.
	Err error
}

// Sink receives transition events. Implementations must not call back into the
// connection that emitted the event.
type Sink interface {
	Event(Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Event(Event) {}

// Func adapts a plain function to the Sink interface.
type Func func(Event)

func (f Func) Event(e Event) {
	f(e)
}

type zerologSink struct {
	logger zerolog.Logger
}

// NewZerolog returns a sink writing one structured line per event. Error transitions are
// logged with the warn level, everything else with debug.
func NewZerolog(logger zerolog.Logger) Sink {
	return zerologSink{logger: logger}
}

func (z zerologSink) Event(e Event) {
	var entry *zerolog.Event
	if e.Err != nil {
		entry = z.logger.Warn().Err(e.Err)
	} else {
		entry = z.logger.Debug()
	}

	entry.
		Str("conn", e.Conn).
		Str("from", e.From).
		Str("to", e.To).
		Msg(e.Reason)
}
